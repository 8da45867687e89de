package rest_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin5169/financial-dashboard/internal/adapter/repository/rest"
	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/dataclient"
)

func TestAccountRepository_List(t *testing.T) {
	stub, client := newStubService(t, stubResponse{http.StatusOK, `[
		{"id":"a1","title":"Savings","description":null,"amount":1500.75,"type":"ARS","user_id":"u1","created_at":"2024-01-02T10:00:00+00:00","updated_at":null},
		{"id":"a2","title":"Broken","description":"x","amount":"not-a-number","type":"USD","user_id":"u1","created_at":"2024-01-03T10:00:00.123456+00:00"}
	]`})

	repo := rest.NewAccountRepository(client, time.UTC, zerolog.Nop())
	accounts, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)

	req := stub.last()
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/rest/v1/accounts", req.path)
	assert.Equal(t, "order=created_at.asc&select=*&user_id=eq.u1", req.query)

	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].Amount.Equal(decimal.RequireFromString("1500.75")))
	assert.Equal(t, domain.CurrencyARS, accounts[0].Type)
	assert.Equal(t, "", accounts[0].Description)
	assert.Equal(t, 2024, accounts[0].CreatedAt.Year())
	assert.True(t, accounts[1].Amount.IsZero(), "unparsable amount reads as zero")
}

func TestAccountRepository_ListBalances(t *testing.T) {
	stub, client := newStubService(t, stubResponse{http.StatusOK, `[{"amount":100,"type":"ARS"},{"amount":"abc","type":"USD"},{"amount":null,"type":"EUR"}]`})

	repo := rest.NewAccountRepository(client, time.UTC, zerolog.Nop())
	balances, err := repo.ListBalances(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "select=amount,type&user_id=eq.u1", stub.last().query)
	assert.Equal(t, []domain.AccountBalance{
		{Amount: "100", Type: domain.CurrencyARS},
		{Amount: "abc", Type: domain.CurrencyUSD},
		{Amount: "", Type: domain.CurrencyEUR},
	}, balances)

	totals := domain.SumTotals(balances)
	assert.True(t, totals.ARS.Equal(decimal.NewFromInt(100)))
	assert.True(t, totals.USD.IsZero())
}

func TestAccountRepository_Create(t *testing.T) {
	stub, client := newStubService(t, stubResponse{http.StatusCreated,
		`{"id":"a9","title":"Wallet","description":"","amount":12.5,"type":"USD","user_id":"u1","created_at":"2024-05-01T00:00:00Z"}`})

	repo := rest.NewAccountRepository(client, time.UTC, zerolog.Nop())
	created, err := repo.Create(context.Background(), &domain.Account{
		Title:  "Wallet",
		Amount: decimal.RequireFromString("12.50"),
		Type:   domain.CurrencyUSD,
		UserID: "u1",
	})
	require.NoError(t, err)

	req := stub.last()
	assert.Equal(t, http.MethodPost, req.method)
	assert.JSONEq(t, `{"title":"Wallet","description":"","amount":12.5,"type":"USD","user_id":"u1"}`, req.body)
	assert.Equal(t, "a9", created.ID)
}

func TestAccountRepository_CreateRejected(t *testing.T) {
	_, client := newStubService(t, stubResponse{http.StatusForbidden,
		`{"code":"42501","message":"new row violates row-level security policy for table \"accounts\""}`})

	repo := rest.NewAccountRepository(client, time.UTC, zerolog.Nop())
	_, err := repo.Create(context.Background(), &domain.Account{Title: "x", Type: domain.CurrencyARS})

	var apiErr *dataclient.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, `new row violates row-level security policy for table "accounts"`, err.Error())
}

func TestAccountRepository_Update(t *testing.T) {
	stub, client := newStubService(t,
		stubResponse{http.StatusOK, `{"id":"a1","title":"Renamed","amount":5,"type":"EUR"}`},
		stubResponse{http.StatusNotAcceptable, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`},
	)

	repo := rest.NewAccountRepository(client, time.UTC, zerolog.Nop())
	title := "Renamed"
	updated, err := repo.Update(context.Background(), "a1", domain.AccountPatch{Title: &title})
	require.NoError(t, err)

	req := stub.last()
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, "id=eq.a1&select=*", req.query)
	assert.JSONEq(t, `{"title":"Renamed"}`, req.body)
	assert.Equal(t, "Renamed", updated.Title)

	_, err = repo.Update(context.Background(), "missing", domain.AccountPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepository_Delete(t *testing.T) {
	stub, client := newStubService(t,
		stubResponse{http.StatusNoContent, ``},
		stubResponse{http.StatusBadRequest, `{"code":"22P02","message":"invalid input syntax for type uuid: \"nope\""}`},
	)

	repo := rest.NewAccountRepository(client, time.UTC, zerolog.Nop())
	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.Equal(t, http.MethodDelete, stub.last().method)
	assert.Equal(t, "id=eq.a1", stub.last().query)

	assert.Error(t, repo.Delete(context.Background(), "nope"))
}
