package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/adapter/http/dto"
	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	ListAccounts(ctx context.Context) []*domain.Account
	AddAccount(ctx context.Context, input usecase.AddAccountInput) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) *domain.Account
	DeleteAccount(ctx context.Context, id string) bool
	TotalAmount(ctx context.Context) domain.BalanceTotals
	BalancesByCurrency(ctx context.Context) map[domain.Currency]decimal.Decimal
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// List lists the caller's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts := h.accountUC.ListAccounts(r.Context())

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    len(accounts),
	})
}

// Create adds an account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account", err.Error())
		return
	}

	account, err := h.accountUC.AddAccount(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Update applies a partial update.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account update", err.Error())
		return
	}

	account := h.accountUC.UpdateAccount(r.Context(), id, patch)
	if account == nil {
		writeError(w, http.StatusBadGateway, "update failed", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if !h.accountUC.DeleteAccount(r.Context(), id) {
		writeError(w, http.StatusBadGateway, "delete failed", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Totals returns the ARS and USD balance totals.
func (h *AccountHandler) Totals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.TotalsFromDomain(h.accountUC.TotalAmount(r.Context())))
}

// Balances returns totals for every account type.
func (h *AccountHandler) Balances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(h.accountUC.BalancesByCurrency(r.Context())))
}
