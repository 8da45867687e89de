package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// PaymentUseCase handles scheduled payments for the current user scope.
type PaymentUseCase struct {
	paymentRepo PaymentRepository
	scope       *ScopeResolver
	recorder    Recorder
	clock       Clock
	logger      zerolog.Logger
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(paymentRepo PaymentRepository, scope *ScopeResolver, recorder Recorder, clock Clock, logger zerolog.Logger) *PaymentUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &PaymentUseCase{
		paymentRepo: paymentRepo,
		scope:       scope,
		recorder:    recorder,
		clock:       clock,
		logger:      logger.With().Str("entity", EntityPayment).Logger(),
	}
}

// AddPaymentInput represents input for scheduling a payment.
type AddPaymentInput struct {
	Name           string
	Description    string
	Amount         decimal.Decimal
	ExpirationDate time.Time
	Status         domain.PaymentStatus
	Type           domain.PaymentType
}

// Validate checks the input before anything is sent to storage.
func (in AddPaymentInput) Validate() error {
	if err := domain.ValidateTitle(in.Name); err != nil {
		return err
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if in.ExpirationDate.IsZero() {
		return fmt.Errorf("%w: expiration date is required", domain.ErrInvalidDate)
	}
	if in.Status != "" && !in.Status.IsStorable() {
		return domain.ErrInvalidPaymentStatus
	}
	if !in.Type.IsValid() {
		return domain.ErrInvalidPaymentType
	}
	return nil
}

// PaymentView pairs a stored payment with its status as of a given instant.
type PaymentView struct {
	Payment         *domain.Payment
	EffectiveStatus domain.PaymentStatus
}

// CurrentUserID returns the authenticated user id, if any.
func (uc *PaymentUseCase) CurrentUserID(ctx context.Context) (string, bool) {
	return uc.scope.CurrentUserID(ctx)
}

// ListPayments returns the scope's payments, earliest expiration first.
// Failures are logged and yield an empty list.
func (uc *PaymentUseCase) ListPayments(ctx context.Context) []*domain.Payment {
	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	payments, err := uc.paymentRepo.List(ctx, scope.UserID())
	uc.recorder.ObserveOperation(EntityPayment, OpList, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Str("scope", scope.String()).Msg("error fetching payments")
		return []*domain.Payment{}
	}

	if payments == nil {
		payments = []*domain.Payment{}
	}

	return payments
}

// ListPaymentsWithStatus lists payments along with their effective status at now.
// Nothing is written back.
func (uc *PaymentUseCase) ListPaymentsWithStatus(ctx context.Context, now time.Time) []PaymentView {
	payments := uc.ListPayments(ctx)

	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, PaymentView{Payment: p, EffectiveStatus: p.EffectiveStatus(now)})
	}

	return views
}

// Now returns the use case's clock reading.
func (uc *PaymentUseCase) Now() time.Time {
	return uc.clock()
}

// AddPayment schedules a payment for the scope. Status defaults to pending.
// Storage failures are returned.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, input AddPaymentInput) (*domain.Payment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.PaymentPending
	}

	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	created, err := uc.paymentRepo.Create(ctx, &domain.Payment{
		Name:           input.Name,
		Description:    input.Description,
		Amount:         input.Amount,
		ExpirationDate: input.ExpirationDate,
		Status:         status,
		Type:           input.Type,
		UserID:         scope.UserID(),
	})
	uc.recorder.ObserveOperation(EntityPayment, OpAdd, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Msg("error adding payment")
		return nil, fmt.Errorf("failed to add payment: %w", err)
	}

	uc.logger.Info().Str("payment_id", created.ID).Msg("payment added")
	return created, nil
}

// UpdatePayment applies patch to the payment with the given id. Returns nil on failure.
func (uc *PaymentUseCase) UpdatePayment(ctx context.Context, id string, patch domain.PaymentPatch) *domain.Payment {
	if err := validatePatch(patch.IsEmpty(), patch.Validate); err != nil {
		uc.logger.Error().Err(err).Str("payment_id", id).Msg("error updating payment")
		return nil
	}

	ctx, _ = uc.scope.Bind(ctx)
	start := time.Now()
	updated, err := uc.paymentRepo.Update(ctx, id, patch)
	uc.recorder.ObserveOperation(EntityPayment, OpUpdate, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("payment_id", id).Msg("error updating payment")
		return nil
	}

	return updated
}

// MarkPaid settles a payment: status paid, payment date paidAt, and the amount
// actually paid when given. A zero paidAt means now. Returns nil on failure.
func (uc *PaymentUseCase) MarkPaid(ctx context.Context, id string, amount *decimal.Decimal, paidAt time.Time) *domain.Payment {
	if paidAt.IsZero() {
		paidAt = uc.clock()
	}
	return uc.UpdatePayment(ctx, id, domain.SettlementPatch(amount, paidAt))
}

// Cancel marks a payment cancelled. Returns nil on failure.
func (uc *PaymentUseCase) Cancel(ctx context.Context, id string) *domain.Payment {
	status := domain.PaymentCancelled
	return uc.UpdatePayment(ctx, id, domain.PaymentPatch{Status: &status})
}

// DeletePayment removes the payment with the given id and reports success.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, id string) bool {
	ctx, _ = uc.scope.Bind(ctx)
	start := time.Now()
	err := uc.paymentRepo.Delete(ctx, id)
	uc.recorder.ObserveOperation(EntityPayment, OpDelete, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("payment_id", id).Msg("error deleting payment")
		return false
	}

	return true
}
