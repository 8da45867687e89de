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

var accountColumnNames = []string{"id", "title", "description", "amount", "type", "user_id", "created_at", "updated_at"}

func TestAccountRepositoryList(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT " + accountColumns + " FROM accounts WHERE user_id = $1 ORDER BY created_at ASC")).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows(accountColumnNames).
			AddRow("a1", "Wallet", "cash", "1500.50", "ARS", testUserID, created, created).
			AddRow("a2", "Savings", nil, "not-a-number", "USD", testUserID, created.Add(time.Hour), nil))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	accounts, err := repo.List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	if !accounts[0].Amount.Equal(decimal.RequireFromString("1500.50")) {
		t.Errorf("amount = %s, want 1500.50", accounts[0].Amount)
	}
	if accounts[0].Description != "cash" || accounts[0].Type != domain.CurrencyARS {
		t.Errorf("unexpected first account: %+v", accounts[0])
	}
	if !accounts[0].CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", accounts[0].CreatedAt, created)
	}

	if accounts[1].Description != "" {
		t.Errorf("null description should read as empty, got %q", accounts[1].Description)
	}
	if !accounts[1].Amount.IsZero() {
		t.Errorf("unparsable amount should read as zero, got %s", accounts[1].Amount)
	}
	if !accounts[1].UpdatedAt.IsZero() {
		t.Errorf("null updated_at should read as zero time")
	}

	assertExpectations(t, pool)
}

func TestAccountRepositoryListEmpty(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SELECT .* FROM accounts").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows(accountColumnNames))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	accounts, err := repo.List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accounts == nil || len(accounts) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", accounts)
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryListQueryError(t *testing.T) {
	pool := newMockPool(t)
	dbErr := errors.New("connection reset")
	pool.ExpectQuery("SELECT .* FROM accounts").WithArgs(testUserID).WillReturnError(dbErr)

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	if _, err := repo.List(context.Background(), testUserID); !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryListBalances(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery(regexp.QuoteMeta("SELECT amount::text, type FROM accounts WHERE user_id = $1")).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"amount", "type"}).
			AddRow("100", "ARS").
			AddRow(nil, "USD").
			AddRow("20.5", "EUR"))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	balances, err := repo.ListBalances(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.AccountBalance{
		{Amount: "100", Type: domain.CurrencyARS},
		{Amount: "", Type: domain.CurrencyUSD},
		{Amount: "20.5", Type: domain.CurrencyEUR},
	}
	if len(balances) != len(want) {
		t.Fatalf("expected %d balances, got %d", len(want), len(balances))
	}
	for i := range want {
		if balances[i] != want[i] {
			t.Errorf("balance %d = %+v, want %+v", i, balances[i], want[i])
		}
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	created := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO accounts (id, title, description, amount, type, user_id)")).
		WithArgs("00000000-0000-0000-0000-000000000001", "Wallet", "", "250.75", "USD", testUserID).
		WillReturnRows(pgxmock.NewRows(accountColumnNames).
			AddRow("00000000-0000-0000-0000-000000000001", "Wallet", "", "250.75", "USD", testUserID, created, created))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	account, err := repo.Create(context.Background(), &domain.Account{
		Title:  "Wallet",
		Amount: decimal.RequireFromString("250.75"),
		Type:   domain.CurrencyUSD,
		UserID: testUserID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != "00000000-0000-0000-0000-000000000001" {
		t.Errorf("unexpected id %q", account.ID)
	}
	if account.UserID != testUserID {
		t.Errorf("user_id = %q, want %q", account.UserID, testUserID)
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryUpdate(t *testing.T) {
	pool := newMockPool(t)
	title := "Renamed"
	amount := decimal.RequireFromString("99.90")

	pool.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET title = $1, amount = $2::numeric WHERE id = $3 RETURNING " + accountColumns)).
		WithArgs("Renamed", "99.9", "a1").
		WillReturnRows(pgxmock.NewRows(accountColumnNames).
			AddRow("a1", "Renamed", "", "99.90", "ARS", testUserID, nil, nil))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	account, err := repo.Update(context.Background(), "a1", domain.AccountPatch{Title: &title, Amount: &amount})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Title != "Renamed" || !account.Amount.Equal(amount) {
		t.Errorf("unexpected account: %+v", account)
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryUpdateNotFound(t *testing.T) {
	pool := newMockPool(t)
	title := "Renamed"

	pool.ExpectQuery("UPDATE accounts SET").
		WithArgs("Renamed", "missing").
		WillReturnRows(pgxmock.NewRows(accountColumnNames))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	_, err := repo.Update(context.Background(), "missing", domain.AccountPatch{Title: &title})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryUpdateEmptyPatch(t *testing.T) {
	pool := newMockPool(t)

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	_, err := repo.Update(context.Background(), "a1", domain.AccountPatch{})
	if !errors.Is(err, domain.ErrEmptyPatch) {
		t.Fatalf("expected ErrEmptyPatch, got %v", err)
	}
	assertExpectations(t, pool)
}

func TestAccountRepositoryDelete(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id = $1")).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := newAccountRepository(pool, &sequenceIDs{}, zerolog.Nop())
	if err := repo.Delete(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(context.Background(), "gone"); err != nil {
		t.Fatalf("deleting a missing row should succeed, got %v", err)
	}
	assertExpectations(t, pool)
}
