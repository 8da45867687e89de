package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/dataclient"
)

type accountRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Amount      rawAmount `json:"amount"`
	Type        string    `json:"type"`
	UserID      *string   `json:"user_id"`
	CreatedAt   *string   `json:"created_at"`
	UpdatedAt   *string   `json:"updated_at"`
}

type newAccountRow struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	UserID      string      `json:"user_id"`
}

type balanceRow struct {
	Amount rawAmount `json:"amount"`
	Type   string    `json:"type"`
}

// AccountRepository implements usecase.AccountRepository over the data service.
type AccountRepository struct {
	client *dataclient.Client
	conv   converter
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(client *dataclient.Client, loc *time.Location, logger zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		client: client,
		conv:   newConverter(loc, logger),
	}
}

// List returns userID's accounts, oldest first.
func (r *AccountRepository) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	var rows []accountRow
	err := r.client.From(tableAccounts).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", true).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, r.toDomain(row))
	}
	return accounts, nil
}

// ListBalances fetches only amount and type, leaving amounts unparsed.
func (r *AccountRepository) ListBalances(ctx context.Context, userID string) ([]domain.AccountBalance, error) {
	var rows []balanceRow
	err := r.client.From(tableAccounts).
		Select("amount,type").
		Eq("user_id", userID).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}

	balances := make([]domain.AccountBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, domain.AccountBalance{Amount: string(row.Amount), Type: domain.Currency(row.Type)})
	}
	return balances, nil
}

// Create inserts account and returns the stored row.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	var row accountRow
	err := r.client.From(tableAccounts).
		Insert(newAccountRow{
			Title:       account.Title,
			Description: account.Description,
			Amount:      wireAmount(account.Amount),
			Type:        string(account.Type),
			UserID:      account.UserID,
		}).
		Select("*").
		Single().
		Execute(ctx, &row)
	if err != nil {
		return nil, err
	}
	return r.toDomain(row), nil
}

// Update merges patch into the account with the given id.
func (r *AccountRepository) Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	body := patchBody{}
	body.setString("title", patch.Title)
	body.setString("description", patch.Description)
	body.setAmount("amount", patch.Amount)
	if patch.Type != nil {
		body["type"] = string(*patch.Type)
	}

	var row accountRow
	err := r.client.From(tableAccounts).
		Update(body).
		Eq("id", id).
		Select("*").
		Single().
		Execute(ctx, &row)
	if err != nil {
		if dataclient.IsNoRows(err) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return r.toDomain(row), nil
}

// Delete removes the account with the given id.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	return r.client.From(tableAccounts).Delete().Eq("id", id).Execute(ctx, nil)
}

func (r *AccountRepository) toDomain(row accountRow) *domain.Account {
	return &domain.Account{
		ID:          row.ID,
		Title:       row.Title,
		Description: deref(row.Description),
		Amount:      r.conv.amount(tableAccounts, row.ID, row.Amount),
		Type:        domain.Currency(row.Type),
		UserID:      deref(row.UserID),
		CreatedAt:   r.conv.time(tableAccounts, row.ID, "created_at", row.CreatedAt),
		UpdatedAt:   r.conv.time(tableAccounts, row.ID, "updated_at", row.UpdatedAt),
	}
}
