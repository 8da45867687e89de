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

type transactionRow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Amount      rawAmount `json:"amount"`
	Type        string    `json:"type"`
	Category    *string   `json:"category"`
	Timestamp   *string   `json:"timestamp"`
	Account     *string   `json:"account"`
	UserID      *string   `json:"user_id"`
}

type newTransactionRow struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Timestamp   string      `json:"timestamp"`
	Account     string      `json:"account"`
	UserID      string      `json:"user_id"`
}

// TransactionRepository implements usecase.TransactionRepository over the data service.
type TransactionRepository struct {
	client *dataclient.Client
	conv   converter
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(client *dataclient.Client, loc *time.Location, logger zerolog.Logger) *TransactionRepository {
	return &TransactionRepository{
		client: client,
		conv:   newConverter(loc, logger),
	}
}

// List returns userID's transactions, newest first.
func (r *TransactionRepository) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	var rows []transactionRow
	err := r.client.From(tableTransactions).
		Select("*").
		Eq("user_id", userID).
		Order("timestamp", false).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}

	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, r.toDomain(row))
	}
	return txs, nil
}

// Create inserts tx and returns the stored row.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	var row transactionRow
	err := r.client.From(tableTransactions).
		Insert(newTransactionRow{
			Title:       tx.Title,
			Description: tx.Description,
			Amount:      wireAmount(tx.Amount),
			Type:        string(tx.Type),
			Category:    tx.Category,
			Timestamp:   tx.Timestamp.Format(time.RFC3339Nano),
			Account:     tx.Account,
			UserID:      tx.UserID,
		}).
		Select("*").
		Single().
		Execute(ctx, &row)
	if err != nil {
		return nil, err
	}
	return r.toDomain(row), nil
}

// Update merges patch into the transaction with the given id.
func (r *TransactionRepository) Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	body := patchBody{}
	body.setString("title", patch.Title)
	body.setString("description", patch.Description)
	body.setAmount("amount", patch.Amount)
	if patch.Type != nil {
		body["type"] = string(*patch.Type)
	}
	body.setString("category", patch.Category)
	body.setTime("timestamp", patch.Timestamp)
	body.setString("account", patch.Account)

	var row transactionRow
	err := r.client.From(tableTransactions).
		Update(body).
		Eq("id", id).
		Select("*").
		Single().
		Execute(ctx, &row)
	if err != nil {
		if dataclient.IsNoRows(err) {
			return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return r.toDomain(row), nil
}

// Delete removes the transaction with the given id.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	return r.client.From(tableTransactions).Delete().Eq("id", id).Execute(ctx, nil)
}

func (r *TransactionRepository) toDomain(row transactionRow) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		Title:       row.Title,
		Description: deref(row.Description),
		Amount:      r.conv.amount(tableTransactions, row.ID, row.Amount),
		Type:        domain.TransactionType(row.Type),
		Category:    deref(row.Category),
		Timestamp:   r.conv.time(tableTransactions, row.ID, "timestamp", row.Timestamp),
		Account:     deref(row.Account),
		UserID:      deref(row.UserID),
	}
}
