package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

const paymentColumns = "id, name, description, amount::text, expiration_date, payment_date, status, type, user_id, created_at, updated_at"

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	db     dbtx
	idGen  IDGenerator
	loc    *time.Location
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PaymentRepository. Expiration dates are
// read and written as calendar days in loc.
func NewPaymentRepository(pool *pgxpool.Pool, idGen IDGenerator, loc *time.Location, logger zerolog.Logger) *PaymentRepository {
	return newPaymentRepository(pool, idGen, loc, logger)
}

func newPaymentRepository(db dbtx, idGen IDGenerator, loc *time.Location, logger zerolog.Logger) *PaymentRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PaymentRepository{db: db, idGen: idGen, loc: loc, logger: logger}
}

// List returns userID's payments, earliest expiration first.
func (r *PaymentRepository) List(ctx context.Context, userID string) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE user_id = $1 ORDER BY expiration_date ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// Create inserts payment and returns the stored row.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx,
		"INSERT INTO payments (id, name, description, amount, expiration_date, status, type, user_id) "+
			"VALUES ($1, $2, $3, $4::numeric, $5::date, $6, $7, $8) RETURNING "+paymentColumns,
		r.idGen.Generate(), payment.Name, payment.Description, payment.Amount.String(),
		r.date(payment.ExpirationDate), string(payment.Status), string(payment.Type), payment.UserID)

	return r.scan(row)
}

// Update merges patch into the payment with the given id.
func (r *PaymentRepository) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Description != nil {
		b.set("description", *patch.Description)
	}
	if patch.Amount != nil {
		b.setCast("amount", "numeric", patch.Amount.String())
	}
	if patch.ExpirationDate != nil {
		b.setCast("expiration_date", "date", r.date(*patch.ExpirationDate))
	}
	if patch.PaymentDate != nil {
		b.set("payment_date", *patch.PaymentDate)
	}
	if patch.Status != nil {
		b.set("status", string(*patch.Status))
	}
	if patch.Type != nil {
		b.set("type", string(*patch.Type))
	}
	if b.empty() {
		return nil, domain.ErrEmptyPatch
	}

	sql, args := b.build("payments", id, paymentColumns)
	p, err := r.scan(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound("payment", id, err)
	}
	return p, nil
}

// Delete removes the payment with the given id.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM payments WHERE id = $1", id)
	return err
}

func (r *PaymentRepository) date(t time.Time) string {
	return t.In(r.loc).Format(domain.DateLayout)
}

func (r *PaymentRepository) scan(row pgx.Row) (*domain.Payment, error) {
	var (
		p              domain.Payment
		description    pgtype.Text
		amount         pgtype.Text
		expirationDate pgtype.Date
		paymentDate    pgtype.Timestamptz
		status         string
		typ            pgtype.Text
		userID         pgtype.Text
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &amount, &expirationDate, &paymentDate,
		&status, &typ, &userID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p.Description = textValue(description)
	p.Amount = parseAmount(r.logger, "payments", p.ID, textValue(amount))
	p.ExpirationDate = dateValue(expirationDate, r.loc)
	p.PaymentDate = timestamptzPtr(paymentDate)
	p.Status = domain.PaymentStatus(status)
	p.Type = domain.PaymentType(textValue(typ))
	p.UserID = textValue(userID)
	p.CreatedAt = timestamptzValue(createdAt)
	p.UpdatedAt = timestamptzValue(updatedAt)
	return &p, nil
}
