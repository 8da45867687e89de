package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

const transactionColumns = "id, title, description, amount::text, type, category, timestamp, account, user_id"

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db     dbtx
	idGen  IDGenerator
	logger zerolog.Logger
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool, idGen IDGenerator, logger zerolog.Logger) *TransactionRepository {
	return newTransactionRepository(pool, idGen, logger)
}

func newTransactionRepository(db dbtx, idGen IDGenerator, logger zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, idGen: idGen, logger: logger}
}

// List returns userID's transactions, newest first.
func (r *TransactionRepository) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY timestamp DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []*domain.Transaction{}
	for rows.Next() {
		tx, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// Create inserts tx and returns the stored row.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx,
		"INSERT INTO transactions (id, title, description, amount, type, category, timestamp, account, user_id) "+
			"VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9) RETURNING "+transactionColumns,
		r.idGen.Generate(), tx.Title, tx.Description, tx.Amount.String(), string(tx.Type),
		tx.Category, tx.Timestamp, tx.Account, tx.UserID)

	return r.scan(row)
}

// Update merges patch into the transaction with the given id.
func (r *TransactionRepository) Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
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
	if patch.Category != nil {
		b.set("category", *patch.Category)
	}
	if patch.Timestamp != nil {
		b.set("timestamp", *patch.Timestamp)
	}
	if patch.Account != nil {
		b.set("account", *patch.Account)
	}
	if b.empty() {
		return nil, domain.ErrEmptyPatch
	}

	sql, args := b.build("transactions", id, transactionColumns)
	tx, err := r.scan(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound("transaction", id, err)
	}
	return tx, nil
}

// Delete removes the transaction with the given id.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	return err
}

func (r *TransactionRepository) scan(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx          domain.Transaction
		description pgtype.Text
		amount      pgtype.Text
		typ         string
		category    pgtype.Text
		timestamp   pgtype.Timestamptz
		account     pgtype.Text
		userID      pgtype.Text
	)
	if err := row.Scan(&tx.ID, &tx.Title, &description, &amount, &typ, &category, &timestamp, &account, &userID); err != nil {
		return nil, err
	}

	tx.Description = textValue(description)
	tx.Amount = parseAmount(r.logger, "transactions", tx.ID, textValue(amount))
	tx.Type = domain.TransactionType(typ)
	tx.Category = textValue(category)
	tx.Timestamp = timestamptzValue(timestamp)
	tx.Account = textValue(account)
	tx.UserID = textValue(userID)
	return &tx, nil
}

