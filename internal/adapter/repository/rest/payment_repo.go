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

type paymentRow struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Amount         rawAmount `json:"amount"`
	ExpirationDate *string   `json:"expiration_date"`
	PaymentDate    *string   `json:"payment_date"`
	Status         string    `json:"status"`
	Type           *string   `json:"type"`
	UserID         *string   `json:"user_id"`
	CreatedAt      *string   `json:"created_at"`
	UpdatedAt      *string   `json:"updated_at"`
}

type newPaymentRow struct {
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Amount         json.Number `json:"amount"`
	ExpirationDate string      `json:"expiration_date"`
	Status         string      `json:"status"`
	Type           string      `json:"type"`
	UserID         string      `json:"user_id"`
}

// PaymentRepository implements usecase.PaymentRepository over the data service.
type PaymentRepository struct {
	client *dataclient.Client
	conv   converter
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(client *dataclient.Client, loc *time.Location, logger zerolog.Logger) *PaymentRepository {
	return &PaymentRepository{
		client: client,
		conv:   newConverter(loc, logger),
	}
}

// List returns userID's payments, earliest expiration first.
func (r *PaymentRepository) List(ctx context.Context, userID string) ([]*domain.Payment, error) {
	var rows []paymentRow
	err := r.client.From(tablePayments).
		Select("*").
		Eq("user_id", userID).
		Order("expiration_date", true).
		Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, r.toDomain(row))
	}
	return payments, nil
}

// Create inserts payment and returns the stored row. The expiration date is
// stored as a calendar date in the converter's zone.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	var row paymentRow
	err := r.client.From(tablePayments).
		Insert(newPaymentRow{
			Name:           payment.Name,
			Description:    payment.Description,
			Amount:         wireAmount(payment.Amount),
			ExpirationDate: payment.ExpirationDate.In(r.conv.loc).Format(domain.DateLayout),
			Status:         string(payment.Status),
			Type:           string(payment.Type),
			UserID:         payment.UserID,
		}).
		Select("*").
		Single().
		Execute(ctx, &row)
	if err != nil {
		return nil, err
	}
	return r.toDomain(row), nil
}

// Update merges patch into the payment with the given id.
func (r *PaymentRepository) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	body := patchBody{}
	body.setString("name", patch.Name)
	body.setString("description", patch.Description)
	body.setAmount("amount", patch.Amount)
	if patch.ExpirationDate != nil {
		body["expiration_date"] = patch.ExpirationDate.In(r.conv.loc).Format(domain.DateLayout)
	}
	body.setTime("payment_date", patch.PaymentDate)
	if patch.Status != nil {
		body["status"] = string(*patch.Status)
	}
	if patch.Type != nil {
		body["type"] = string(*patch.Type)
	}

	var row paymentRow
	err := r.client.From(tablePayments).
		Update(body).
		Eq("id", id).
		Select("*").
		Single().
		Execute(ctx, &row)
	if err != nil {
		if dataclient.IsNoRows(err) {
			return nil, fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return r.toDomain(row), nil
}

// Delete removes the payment with the given id.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.client.From(tablePayments).Delete().Eq("id", id).Execute(ctx, nil)
}

func (r *PaymentRepository) toDomain(row paymentRow) *domain.Payment {
	return &domain.Payment{
		ID:             row.ID,
		Name:           row.Name,
		Description:    deref(row.Description),
		Amount:         r.conv.amount(tablePayments, row.ID, row.Amount),
		ExpirationDate: r.conv.time(tablePayments, row.ID, "expiration_date", row.ExpirationDate),
		PaymentDate:    r.conv.optionalTime(tablePayments, row.ID, "payment_date", row.PaymentDate),
		Status:         domain.PaymentStatus(row.Status),
		Type:           domain.PaymentType(deref(row.Type)),
		UserID:         deref(row.UserID),
		CreatedAt:      r.conv.time(tablePayments, row.ID, "created_at", row.CreatedAt),
		UpdatedAt:      r.conv.time(tablePayments, row.ID, "updated_at", row.UpdatedAt),
	}
}
