package usecase

import (
	"context"
	"time"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// List returns userID's accounts ordered by creation time, oldest first.
	List(ctx context.Context, userID string) ([]*domain.Account, error)
	// ListBalances returns only the amount and type of userID's accounts.
	ListBalances(ctx context.Context, userID string) ([]domain.AccountBalance, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	// List returns userID's transactions, most recent first.
	List(ctx context.Context, userID string) ([]*domain.Transaction, error)
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	// List returns userID's payments ordered by expiration date, earliest first.
	List(ctx context.Context, userID string) ([]*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error)
	Delete(ctx context.Context, id string) error
}

// IdentityProvider reports who is calling.
type IdentityProvider interface {
	// CurrentUser returns the authenticated user, or nil without error when the
	// request carries no session.
	CurrentUser(ctx context.Context) (*domain.User, error)
	// CurrentSession describes the session the request carries, or nil.
	CurrentSession(ctx context.Context) (*domain.Session, error)
}

// HealthChecker verifies that the storage backend answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Recorder observes service outcomes. Failures that services swallow are only
// visible through logs and the recorder.
type Recorder interface {
	ObserveOperation(entity, operation string, err error, duration time.Duration)
	ObserveScope(scope domain.UserScope)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete successfully.
	Release(ctx context.Context, key string) error
}

// Clock returns the current time. Services take one so date-dependent
// behaviour is testable.
type Clock func() time.Time

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, error, time.Duration) {}
func (nopRecorder) ObserveScope(domain.UserScope)                         {}
