package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// AccountUseCase handles account operations for the current user scope.
type AccountUseCase struct {
	accountRepo AccountRepository
	scope       *ScopeResolver
	recorder    Recorder
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, scope *ScopeResolver, recorder Recorder, logger zerolog.Logger) *AccountUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AccountUseCase{
		accountRepo: accountRepo,
		scope:       scope,
		recorder:    recorder,
		logger:      logger.With().Str("entity", EntityAccount).Logger(),
	}
}

// AddAccountInput represents input for adding an account.
type AddAccountInput struct {
	Title       string
	Description string
	Amount      decimal.Decimal
	Type        domain.Currency
}

// Validate checks the input before anything is sent to storage.
func (in AddAccountInput) Validate() error {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	return domain.ValidateCurrency(string(in.Type))
}

// CurrentUserID returns the authenticated user id, if any.
func (uc *AccountUseCase) CurrentUserID(ctx context.Context) (string, bool) {
	return uc.scope.CurrentUserID(ctx)
}

// ListAccounts returns the scope's accounts, oldest first. Failures are logged
// and yield an empty list.
func (uc *AccountUseCase) ListAccounts(ctx context.Context) []*domain.Account {
	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	accounts, err := uc.accountRepo.List(ctx, scope.UserID())
	uc.recorder.ObserveOperation(EntityAccount, OpList, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Str("scope", scope.String()).Msg("error fetching accounts")
		return []*domain.Account{}
	}

	if accounts == nil {
		accounts = []*domain.Account{}
	}

	uc.logger.Debug().Int("count", len(accounts)).Str("scope", scope.String()).Msg("fetched accounts")
	return accounts
}

// AddAccount stamps the input with the scope's user id and stores it. Unlike
// the other operations, storage failures are returned to the caller.
func (uc *AccountUseCase) AddAccount(ctx context.Context, input AddAccountInput) (*domain.Account, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	created, err := uc.accountRepo.Create(ctx, &domain.Account{
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Type:        input.Type,
		UserID:      scope.UserID(),
	})
	uc.recorder.ObserveOperation(EntityAccount, OpAdd, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Msg("error adding account")
		return nil, fmt.Errorf("failed to add account: %w", err)
	}

	uc.logger.Info().Str("account_id", created.ID).Str("scope", scope.String()).Msg("account added")
	return created, nil
}

// UpdateAccount applies patch to the account with the given id. It returns nil
// when the update fails for any reason; the failure is logged.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) *domain.Account {
	if err := validatePatch(patch.IsEmpty(), patch.Validate); err != nil {
		uc.logger.Error().Err(err).Str("account_id", id).Msg("error updating account")
		return nil
	}

	ctx, _ = uc.scope.Bind(ctx)
	start := time.Now()
	updated, err := uc.accountRepo.Update(ctx, id, patch)
	uc.recorder.ObserveOperation(EntityAccount, OpUpdate, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("account_id", id).Msg("error updating account")
		return nil
	}

	return updated
}

// DeleteAccount removes the account with the given id and reports success.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id string) bool {
	ctx, _ = uc.scope.Bind(ctx)
	start := time.Now()
	err := uc.accountRepo.Delete(ctx, id)
	uc.recorder.ObserveOperation(EntityAccount, OpDelete, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("account_id", id).Msg("error deleting account")
		return false
	}

	uc.logger.Info().Str("account_id", id).Msg("account deleted")
	return true
}

// TotalAmount sums the scope's ARS and USD balances. Failures yield zero totals.
func (uc *AccountUseCase) TotalAmount(ctx context.Context) domain.BalanceTotals {
	balances, ok := uc.balances(ctx)
	if !ok {
		return domain.BalanceTotals{ARS: decimal.Zero, USD: decimal.Zero}
	}

	totals := domain.SumTotals(balances)
	uc.logger.Debug().Str("ars", totals.ARS.String()).Str("usd", totals.USD.String()).Msg("computed totals")
	return totals
}

// BalancesByCurrency sums the scope's balances for every account type present.
func (uc *AccountUseCase) BalancesByCurrency(ctx context.Context) map[domain.Currency]decimal.Decimal {
	balances, ok := uc.balances(ctx)
	if !ok {
		return map[domain.Currency]decimal.Decimal{}
	}
	return domain.SumByCurrency(balances)
}

func (uc *AccountUseCase) balances(ctx context.Context) ([]domain.AccountBalance, bool) {
	start := time.Now()
	ctx, scope := uc.scope.Bind(ctx)

	balances, err := uc.accountRepo.ListBalances(ctx, scope.UserID())
	uc.recorder.ObserveOperation(EntityAccount, OpTotals, err, time.Since(start))
	if err != nil {
		uc.logger.Error().Err(err).Str("user_id", scope.UserID()).Msg("error fetching account balances")
		return nil, false
	}

	return balances, true
}

func validatePatch(empty bool, validate func() error) error {
	if empty {
		return domain.ErrEmptyPatch
	}
	return validate()
}
