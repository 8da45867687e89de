package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/martin5169/financial-dashboard/internal/adapter/http/dto"
	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	ListTransactions(ctx context.Context) []*domain.Transaction
	AddTransaction(ctx context.Context, input usecase.AddTransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) *domain.Transaction
	DeleteTransaction(ctx context.Context, id string) bool
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	txUC TransactionService
	loc  *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Date-only
// timestamps are read in loc.
func NewTransactionHandler(txUC TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{txUC: txUC, loc: loc}
}

// List lists the caller's transactions, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txs := h.txUC.ListTransactions(r.Context())

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Total:        len(txs),
	})
}

// Create adds a transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
		return
	}

	tx, err := h.txUC.AddTransaction(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Update applies a partial update.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, err := req.ToPatch(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction update", err.Error())
		return
	}

	tx := h.txUC.UpdateTransaction(r.Context(), id, patch)
	if tx == nil {
		writeError(w, http.StatusBadGateway, "update failed", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if !h.txUC.DeleteTransaction(r.Context(), id) {
		writeError(w, http.StatusBadGateway, "delete failed", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
