package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

const accountColumns = "id, title, description, amount::text, type, user_id, created_at, updated_at"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db     dbtx
	idGen  IDGenerator
	logger zerolog.Logger
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool, idGen IDGenerator, logger zerolog.Logger) *AccountRepository {
	return newAccountRepository(pool, idGen, logger)
}

func newAccountRepository(db dbtx, idGen IDGenerator, logger zerolog.Logger) *AccountRepository {
	return &AccountRepository{db: db, idGen: idGen, logger: logger}
}

// List returns userID's accounts, oldest first.
func (r *AccountRepository) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = $1 ORDER BY created_at ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// ListBalances returns amount text and type for userID's accounts.
func (r *AccountRepository) ListBalances(ctx context.Context, userID string) ([]domain.AccountBalance, error) {
	rows, err := r.db.Query(ctx, "SELECT amount::text, type FROM accounts WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := []domain.AccountBalance{}
	for rows.Next() {
		var amount pgtype.Text
		var typ string
		if err := rows.Scan(&amount, &typ); err != nil {
			return nil, err
		}
		balances = append(balances, domain.AccountBalance{Amount: textValue(amount), Type: domain.Currency(typ)})
	}

	return balances, rows.Err()
}

// Create inserts account and returns the stored row.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		"INSERT INTO accounts (id, title, description, amount, type, user_id) VALUES ($1, $2, $3, $4::numeric, $5, $6) RETURNING "+accountColumns,
		r.idGen.Generate(), account.Title, account.Description, account.Amount.String(), string(account.Type), account.UserID)

	return r.scan(row)
}

// Update merges patch into the account with the given id.
func (r *AccountRepository) Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error) {
	var b updateBuilder
	if patch.Title != nil {
		b.set("title", *patch.Title)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Amount != nil {
		b.setCast("amount", "numeric", patch.Amount.String())
	}
	if patch.Type != nil {
		b.set("type", string(*patch.Type))
	}
	if b.empty() {
		return nil, domain.ErrEmptyPatch
	}

	sql, args := b.build("accounts", id, accountColumns)
	account, err := r.scan(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound("account", id, err)
	}
	return account, nil
}

// Delete removes the account with the given id.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	return err
}

func (r *AccountRepository) scan(row pgx.Row) (*domain.Account, error) {
	var (
		a           domain.Account
		description pgtype.Text
		amount      pgtype.Text
		typ         string
		userID      pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&a.ID, &a.Title, &description, &amount, &typ, &userID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	a.Description = textValue(description)
	a.Amount = parseAmount(r.logger, "accounts", a.ID, textValue(amount))
	a.Type = domain.Currency(typ)
	a.UserID = textValue(userID)
	a.CreatedAt = timestamptzValue(createdAt)
	a.UpdatedAt = timestamptzValue(updatedAt)
	return &a, nil
}
