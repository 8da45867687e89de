package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// MockAccountRepository is an in-memory AccountRepository. Func fields
// override the default behaviour.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	ListFunc         func(ctx context.Context, userID string) ([]*domain.Account, error)
	ListBalancesFunc func(ctx context.Context, userID string) ([]domain.AccountBalance, error)
	CreateFunc       func(ctx context.Context, account *domain.Account) (*domain.Account, error)
	UpdateFunc       func(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Account
	for _, acc := range m.accounts {
		if acc.UserID == userID {
			copied := *acc
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *MockAccountRepository) ListBalances(ctx context.Context, userID string) ([]domain.AccountBalance, error) {
	if m.ListBalancesFunc != nil {
		return m.ListBalancesFunc(ctx, userID)
	}
	accounts, _ := m.List(ctx, userID)
	balances := make([]domain.AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		balances = append(balances, domain.AccountBalance{Amount: acc.Amount.String(), Type: acc.Type})
	}
	return balances, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *account
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().Add(time.Duration(len(m.accounts)) * time.Microsecond)
	stored.UpdatedAt = stored.CreatedAt
	m.accounts[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		acc.Title = *patch.Title
	}
	if patch.Description != nil {
		acc.Description = *patch.Description
	}
	if patch.Amount != nil {
		acc.Amount = *patch.Amount
	}
	if patch.Type != nil {
		acc.Type = *patch.Type
	}
	acc.UpdatedAt = time.Now()
	result := *acc
	return &result, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

// MockTransactionRepository is an in-memory TransactionRepository.
type MockTransactionRepository struct {
	mu  sync.RWMutex
	txs map[string]*domain.Transaction

	ListFunc   func(ctx context.Context, userID string) ([]*domain.Transaction, error)
	CreateFunc func(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateFunc func(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txs: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, tx := range m.txs {
		if tx.UserID == userID {
			copied := *tx
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *tx
	stored.ID = uuid.NewString()
	m.txs[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		tx.Title = *patch.Title
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Timestamp != nil {
		tx.Timestamp = *patch.Timestamp
	}
	if patch.Account != nil {
		tx.Account = *patch.Account
	}
	result := *tx
	return &result, nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.txs, id)
	return nil
}

// MockPaymentRepository is an in-memory PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	ListFunc   func(ctx context.Context, userID string) ([]*domain.Payment, error)
	CreateFunc func(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	UpdateFunc func(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) List(ctx context.Context, userID string) ([]*domain.Payment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			copied := *p
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExpirationDate.Before(result[j].ExpirationDate) })
	return result, nil
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *payment
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.payments[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.ExpirationDate != nil {
		p.ExpirationDate = *patch.ExpirationDate
	}
	if patch.PaymentDate != nil {
		paidAt := *patch.PaymentDate
		p.PaymentDate = &paidAt
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	p.UpdatedAt = time.Now()
	result := *p
	return &result, nil
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

// StaticIdentity is an IdentityProvider with a fixed answer.
type StaticIdentity struct {
	User    *domain.User
	Session *domain.Session
	Err     error
}

func (s *StaticIdentity) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.User, s.Err
}

func (s *StaticIdentity) CurrentSession(ctx context.Context) (*domain.Session, error) {
	return s.Session, s.Err
}

// MockIdempotencyStore is an in-memory IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		keys: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keys[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte(usecase.IdempotencyPending)
	}
	m.keys[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
