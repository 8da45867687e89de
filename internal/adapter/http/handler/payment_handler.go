package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/adapter/http/dto"
	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	Now() time.Time
	ListPaymentsWithStatus(ctx context.Context, now time.Time) []usecase.PaymentView
	AddPayment(ctx context.Context, input usecase.AddPaymentInput) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, id string, patch domain.PaymentPatch) *domain.Payment
	MarkPaid(ctx context.Context, id string, amount *decimal.Decimal, paidAt time.Time) *domain.Payment
	Cancel(ctx context.Context, id string) *domain.Payment
	DeletePayment(ctx context.Context, id string) bool
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
	loc       *time.Location
}

// NewPaymentHandler creates a new PaymentHandler. Expiration dates are
// calendar days in loc, and overdue is judged against today in loc.
func NewPaymentHandler(paymentUC PaymentService, loc *time.Location) *PaymentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PaymentHandler{paymentUC: paymentUC, loc: loc}
}

// List lists the caller's payments with their effective status.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	views := h.paymentUC.ListPaymentsWithStatus(r.Context(), h.paymentUC.Now().In(h.loc))

	writeJSON(w, http.StatusOK, dto.ListPaymentsResponse{
		Payments: dto.PaymentsFromViews(views),
		Total:    len(views),
	})
}

// Create schedules a payment.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment", err.Error())
		return
	}

	payment, err := h.paymentUC.AddPayment(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Update applies a partial update.
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, err := req.ToPatch(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment update", err.Error())
		return
	}

	h.writePayment(w, h.paymentUC.UpdatePayment(r.Context(), id, patch))
}

// Pay marks a payment as paid. The body is optional.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req dto.PayPaymentRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, paidAt, err := req.Settlement(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid settlement", err.Error())
		return
	}

	h.writePayment(w, h.paymentUC.MarkPaid(r.Context(), id, amount, paidAt))
}

// Cancel marks a payment as cancelled.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	h.writePayment(w, h.paymentUC.Cancel(r.Context(), id))
}

// Delete removes a payment.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if !h.paymentUC.DeletePayment(r.Context(), id) {
		writeError(w, http.StatusBadGateway, "delete failed", "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentHandler) writePayment(w http.ResponseWriter, payment *domain.Payment) {
	if payment == nil {
		writeError(w, http.StatusBadGateway, "update failed", "")
		return
	}
	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
