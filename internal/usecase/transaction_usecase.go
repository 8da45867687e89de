package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// TransactionUseCase handles transaction operations for the current user scope.
type TransactionUseCase struct {
	txRepo   TransactionRepository
	scope    *ScopeResolver
	recorder Recorder
	clock    Clock
	logger   zerolog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(txRepo TransactionRepository, scope *ScopeResolver, recorder Recorder, clock Clock, logger zerolog.Logger) *TransactionUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &TransactionUseCase{
		txRepo:   txRepo,
		scope:    scope,
		recorder: recorder,
		clock:    clock,
		logger:   logger.With().Str("entity", EntityTransaction).Logger(),
	}
}

// AddTransactionInput represents input for recording a transaction. Amount is
// a magnitude; the stored sign follows Type.
type AddTransactionInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    string
	Timestamp   time.Time
	Account     string
}

// Validate checks the input before anything is sent to storage.
func (in AddTransactionInput) Validate() error {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if !in.Type.IsValid() {
		return domain.ErrInvalidTransactionType
	}
	return nil
}

// CurrentUserID returns the authenticated user id, if any.
func (uc *TransactionUseCase) CurrentUserID(ctx context.Context) (string, bool) {
	return uc.scope.CurrentUserID(ctx)
}

// ListTransactions returns the scope's transactions, newest first. Failures are
// logged and yield an empty list.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context) []*domain.Transaction {
	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	txs, err := uc.txRepo.List(ctx, scope.UserID())
	uc.recorder.ObserveOperation(EntityTransaction, OpList, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Str("scope", scope.String()).Msg("error fetching transactions")
		return []*domain.Transaction{}
	}

	if txs == nil {
		txs = []*domain.Transaction{}
	}

	return txs
}

// AddTransaction records a transaction for the scope. Outgoing amounts are
// stored negative and incoming amounts positive. Storage failures are returned.
func (uc *TransactionUseCase) AddTransaction(ctx context.Context, input AddTransactionInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = uc.clock()
	}

	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	created, err := uc.txRepo.Create(ctx, &domain.Transaction{
		Title:       input.Title,
		Description: input.Description,
		Amount:      domain.SignedAmount(input.Amount, input.Type),
		Type:        input.Type,
		Category:    category,
		Timestamp:   timestamp,
		Account:     input.Account,
		UserID:      scope.UserID(),
	})
	uc.recorder.ObserveOperation(EntityTransaction, OpAdd, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Msg("error adding transaction")
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	uc.logger.Info().Str("transaction_id", created.ID).Str("type", string(created.Type)).Msg("transaction added")
	return created, nil
}

// UpdateTransaction applies patch to the transaction with the given id. The
// amount sign is stored as given; a sign that disagrees with the type is only
// logged. Returns nil on failure.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) *domain.Transaction {
	if err := validatePatch(patch.IsEmpty(), patch.Validate); err != nil {
		uc.logger.Error().Err(err).Str("transaction_id", id).Msg("error updating transaction")
		return nil
	}

	ctx, _ = uc.scope.Bind(ctx)
	start := time.Now()
	updated, err := uc.txRepo.Update(ctx, id, patch)
	uc.recorder.ObserveOperation(EntityTransaction, OpUpdate, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("transaction_id", id).Msg("error updating transaction")
		return nil
	}

	if !updated.SignMatchesType() {
		uc.logger.Warn().
			Str("transaction_id", id).
			Str("type", string(updated.Type)).
			Str("amount", updated.Amount.String()).
			Msg("transaction amount sign does not match its type")
	}

	return updated
}

// DeleteTransaction removes the transaction with the given id and reports success.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, id string) bool {
	ctx, _ = uc.scope.Bind(ctx)
	start := time.Now()
	err := uc.txRepo.Delete(ctx, id)
	uc.recorder.ObserveOperation(EntityTransaction, OpDelete, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("transaction_id", id).Msg("error deleting transaction")
		return false
	}

	return true
}
