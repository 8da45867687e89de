package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// Amount is an amount as typed by the user. Clients send either a JSON
// number or a string; the text is kept raw and parsed on conversion.
type Amount string

// UnmarshalJSON accepts `12.5`, `"12.5"` and `null`.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string")
	}
	*a = Amount(n)
	return nil
}

// Decimal parses the amount.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return domain.ParseAmount(string(a))
}

func optionalAmount(a *Amount) (*decimal.Decimal, error) {
	if a == nil {
		return nil, nil
	}
	amount, err := a.Decimal()
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

func optionalTime(raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := domain.ParseTimestamp(*raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AddAccountRequest represents a request to add an account.
type AddAccountRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Type        string `json:"type"`
}

// ToUseCaseInput converts to use case input.
func (r *AddAccountRequest) ToUseCaseInput() (usecase.AddAccountInput, error) {
	amount, err := r.Amount.Decimal()
	if err != nil {
		return usecase.AddAccountInput{}, err
	}

	input := usecase.AddAccountInput{
		Title:       r.Title,
		Description: r.Description,
		Amount:      amount,
		Type:        domain.Currency(strings.TrimSpace(r.Type)),
	}
	return input, input.Validate()
}

// UpdateAccountRequest is a partial account update; absent fields are kept.
type UpdateAccountRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Amount      *Amount `json:"amount"`
	Type        *string `json:"type"`
}

// ToPatch converts to a domain patch.
func (r *UpdateAccountRequest) ToPatch() (domain.AccountPatch, error) {
	amount, err := optionalAmount(r.Amount)
	if err != nil {
		return domain.AccountPatch{}, err
	}

	patch := domain.AccountPatch{
		Title:       r.Title,
		Description: r.Description,
		Amount:      amount,
	}
	if r.Type != nil {
		typ := domain.Currency(strings.TrimSpace(*r.Type))
		patch.Type = &typ
	}

	return patch, checkPatch(patch.IsEmpty(), patch.Validate)
}

// AddTransactionRequest represents a request to add a transaction. Amount is
// unsigned; the sign follows Type.
type AddTransactionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	Account     string `json:"account"`
}

// ToUseCaseInput converts to use case input. Date-only timestamps are read in loc.
func (r *AddTransactionRequest) ToUseCaseInput(loc *time.Location) (usecase.AddTransactionInput, error) {
	amount, err := r.Amount.Decimal()
	if err != nil {
		return usecase.AddTransactionInput{}, err
	}

	input := usecase.AddTransactionInput{
		Title:       r.Title,
		Description: r.Description,
		Amount:      amount,
		Type:        domain.TransactionType(strings.TrimSpace(r.Type)),
		Category:    strings.TrimSpace(r.Category),
		Account:     r.Account,
	}

	if strings.TrimSpace(r.Timestamp) != "" {
		ts, err := domain.ParseTimestamp(r.Timestamp, loc)
		if err != nil {
			return usecase.AddTransactionInput{}, err
		}
		input.Timestamp = ts
	}

	return input, input.Validate()
}

// UpdateTransactionRequest is a partial transaction update.
type UpdateTransactionRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Amount      *Amount `json:"amount"`
	Type        *string `json:"type"`
	Category    *string `json:"category"`
	Timestamp   *string `json:"timestamp"`
	Account     *string `json:"account"`
}

// ToPatch converts to a domain patch. The amount is taken as sent.
func (r *UpdateTransactionRequest) ToPatch(loc *time.Location) (domain.TransactionPatch, error) {
	amount, err := optionalAmount(r.Amount)
	if err != nil {
		return domain.TransactionPatch{}, err
	}
	ts, err := optionalTime(r.Timestamp, loc)
	if err != nil {
		return domain.TransactionPatch{}, err
	}

	patch := domain.TransactionPatch{
		Title:       r.Title,
		Description: r.Description,
		Amount:      amount,
		Category:    r.Category,
		Timestamp:   ts,
		Account:     r.Account,
	}
	if r.Type != nil {
		typ := domain.TransactionType(strings.TrimSpace(*r.Type))
		patch.Type = &typ
	}

	return patch, checkPatch(patch.IsEmpty(), patch.Validate)
}

// AddPaymentRequest represents a request to schedule a payment.
type AddPaymentRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Amount         Amount `json:"amount"`
	ExpirationDate string `json:"expiration_date"`
	Status         string `json:"status"`
	Type           string `json:"type"`
}

// ToUseCaseInput converts to use case input. The expiration date is a
// calendar day in loc.
func (r *AddPaymentRequest) ToUseCaseInput(loc *time.Location) (usecase.AddPaymentInput, error) {
	amount, err := r.Amount.Decimal()
	if err != nil {
		return usecase.AddPaymentInput{}, err
	}

	input := usecase.AddPaymentInput{
		Name:        r.Name,
		Description: r.Description,
		Amount:      amount,
		Status:      domain.PaymentStatus(strings.TrimSpace(r.Status)),
		Type:        domain.PaymentType(strings.TrimSpace(r.Type)),
	}

	if strings.TrimSpace(r.ExpirationDate) != "" {
		expiry, err := domain.ParseTimestamp(r.ExpirationDate, loc)
		if err != nil {
			return usecase.AddPaymentInput{}, err
		}
		input.ExpirationDate = expiry
	}

	return input, input.Validate()
}

// UpdatePaymentRequest is a partial payment update.
type UpdatePaymentRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Amount         *Amount `json:"amount"`
	ExpirationDate *string `json:"expiration_date"`
	PaymentDate    *string `json:"payment_date"`
	Status         *string `json:"status"`
	Type           *string `json:"type"`
}

// ToPatch converts to a domain patch.
func (r *UpdatePaymentRequest) ToPatch(loc *time.Location) (domain.PaymentPatch, error) {
	amount, err := optionalAmount(r.Amount)
	if err != nil {
		return domain.PaymentPatch{}, err
	}
	expiry, err := optionalTime(r.ExpirationDate, loc)
	if err != nil {
		return domain.PaymentPatch{}, err
	}
	paidAt, err := optionalTime(r.PaymentDate, loc)
	if err != nil {
		return domain.PaymentPatch{}, err
	}

	patch := domain.PaymentPatch{
		Name:           r.Name,
		Description:    r.Description,
		Amount:         amount,
		ExpirationDate: expiry,
		PaymentDate:    paidAt,
	}
	if r.Status != nil {
		status := domain.PaymentStatus(strings.TrimSpace(*r.Status))
		patch.Status = &status
	}
	if r.Type != nil {
		typ := domain.PaymentType(strings.TrimSpace(*r.Type))
		patch.Type = &typ
	}

	return patch, checkPatch(patch.IsEmpty(), patch.Validate)
}

// PayPaymentRequest settles a payment. Both fields are optional: the stored
// amount is kept and the payment date defaults to now.
type PayPaymentRequest struct {
	Amount *Amount `json:"amount"`
	PaidAt *string `json:"paid_at"`
}

// Settlement returns the amount and payment time to record.
func (r *PayPaymentRequest) Settlement(loc *time.Location) (*decimal.Decimal, time.Time, error) {
	amount, err := optionalAmount(r.Amount)
	if err != nil {
		return nil, time.Time{}, err
	}
	paidAt, err := optionalTime(r.PaidAt, loc)
	if err != nil {
		return nil, time.Time{}, err
	}
	if paidAt == nil {
		return amount, time.Time{}, nil
	}
	return amount, *paidAt, nil
}

func checkPatch(empty bool, validate func() error) error {
	if empty {
		return domain.ErrEmptyPatch
	}
	return validate()
}
