package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

var paymentColumnNames = []string{"id", "name", "description", "amount", "expiration_date", "payment_date",
	"status", "type", "user_id", "created_at", "updated_at"}

func buenosAires(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	return loc
}

func TestPaymentRepositoryList(t *testing.T) {
	loc := buenosAires(t)
	pool := newMockPool(t)
	paidAt := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT " + paymentColumns + " FROM payments WHERE user_id = $1 ORDER BY expiration_date ASC")).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows(paymentColumnNames).
			AddRow("p1", "Card", nil, "12000", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), paidAt,
				"paid", "credit-card", testUserID, nil, nil).
			AddRow("p2", "Rent", "april", "300000", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), nil,
				"pending", nil, testUserID, nil, nil))

	repo := newPaymentRepository(pool, &sequenceIDs{}, loc, zerolog.Nop())
	payments, err := repo.List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}

	card := payments[0]
	wantExpiry := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	if !card.ExpirationDate.Equal(wantExpiry) {
		t.Errorf("expiration = %v, want %v", card.ExpirationDate, wantExpiry)
	}
	if card.PaymentDate == nil || !card.PaymentDate.Equal(paidAt) {
		t.Errorf("payment_date = %v, want %v", card.PaymentDate, paidAt)
	}
	if card.Status != domain.PaymentPaid || card.Type != domain.PaymentTypeCreditCard {
		t.Errorf("unexpected card payment: %+v", card)
	}

	rent := payments[1]
	if rent.PaymentDate != nil {
		t.Errorf("null payment_date should read as nil")
	}
	if rent.Type != "" {
		t.Errorf("null type should read as empty, got %q", rent.Type)
	}
	assertExpectations(t, pool)
}

func TestPaymentRepositoryCreateWritesLocalDate(t *testing.T) {
	loc := buenosAires(t)
	pool := newMockPool(t)
	// 01:00 UTC on the 10th is still the 9th in Buenos Aires.
	expiry := time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments (id, name, description, amount, expiration_date, status, type, user_id)")).
		WithArgs("00000000-0000-0000-0000-000000000001", "Car loan", "", "85000", "2024-05-09", "pending", "car", testUserID).
		WillReturnRows(pgxmock.NewRows(paymentColumnNames).
			AddRow("00000000-0000-0000-0000-000000000001", "Car loan", "", "85000", time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), nil,
				"pending", "car", testUserID, nil, nil))

	repo := newPaymentRepository(pool, &sequenceIDs{}, loc, zerolog.Nop())
	p, err := repo.Create(context.Background(), &domain.Payment{
		Name:           "Car loan",
		Amount:         decimal.NewFromInt(85000),
		ExpirationDate: expiry,
		Status:         domain.PaymentPending,
		Type:           domain.PaymentTypeCar,
		UserID:         testUserID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.ExpirationDate.Format(domain.DateLayout); got != "2024-05-09" {
		t.Errorf("expiration = %s, want 2024-05-09", got)
	}
	assertExpectations(t, pool)
}

func TestPaymentRepositoryUpdateSettlement(t *testing.T) {
	pool := newMockPool(t)
	paidAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	patch := domain.SettlementPatch(nil, paidAt)

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET payment_date = $1, status = $2 WHERE id = $3 RETURNING " + paymentColumns)).
		WithArgs(paidAt, "paid", "p1").
		WillReturnRows(pgxmock.NewRows(paymentColumnNames).
			AddRow("p1", "Card", "", "12000", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), paidAt,
				"paid", "credit-card", testUserID, nil, paidAt))

	repo := newPaymentRepository(pool, &sequenceIDs{}, time.UTC, zerolog.Nop())
	p, err := repo.Update(context.Background(), "p1", patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != domain.PaymentPaid || p.PaymentDate == nil {
		t.Errorf("unexpected payment: %+v", p)
	}
	assertExpectations(t, pool)
}

func TestPaymentRepositoryUpdateExpirationDate(t *testing.T) {
	pool := newMockPool(t)
	expiry := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET expiration_date = $1::date WHERE id = $2")).
		WithArgs("2024-06-30", "p1").
		WillReturnRows(pgxmock.NewRows(paymentColumnNames).
			AddRow("p1", "Card", "", "12000", expiry, nil, "pending", "credit-card", testUserID, nil, nil))

	repo := newPaymentRepository(pool, &sequenceIDs{}, nil, zerolog.Nop())
	if _, err := repo.Update(context.Background(), "p1", domain.PaymentPatch{ExpirationDate: &expiry}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, pool)
}

func TestPaymentRepositoryUpdateNotFound(t *testing.T) {
	pool := newMockPool(t)
	status := domain.PaymentCancelled
	pool.ExpectQuery("UPDATE payments SET").
		WithArgs("cancelled", "missing").
		WillReturnRows(pgxmock.NewRows(paymentColumnNames))

	repo := newPaymentRepository(pool, &sequenceIDs{}, time.UTC, zerolog.Nop())
	_, err := repo.Update(context.Background(), "missing", domain.PaymentPatch{Status: &status})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertExpectations(t, pool)
}

func TestPaymentRepositoryDelete(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM payments WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := newPaymentRepository(pool, &sequenceIDs{}, time.UTC, zerolog.Nop())
	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, pool)
}
