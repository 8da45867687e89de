package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	UserID      string          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Amount:      a.Amount,
		Type:        string(a.Type),
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Timestamp   time.Time       `json:"timestamp"`
	Account     string          `json:"account"`
	UserID      string          `json:"user_id"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Category:    t.Category,
		Timestamp:   t.Timestamp,
		Account:     t.Account,
		UserID:      t.UserID,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// PaymentResponse represents a payment in API responses. EffectiveStatus is
// only set on listings.
type PaymentResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	ExpirationDate  string          `json:"expiration_date"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Status          string          `json:"status"`
	EffectiveStatus string          `json:"effective_status,omitempty"`
	Type            string          `json:"type"`
	UserID          string          `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PaymentFromDomain converts domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Status:      string(p.Status),
		Type:        string(p.Type),
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.ExpirationDate.IsZero() {
		resp.ExpirationDate = p.ExpirationDate.Format(domain.DateLayout)
	}
	return resp
}

// PaymentsFromViews converts listed payments to responses.
func PaymentsFromViews(views []usecase.PaymentView) []*PaymentResponse {
	result := make([]*PaymentResponse, len(views))
	for i, v := range views {
		result[i] = PaymentFromDomain(v.Payment)
		result[i].EffectiveStatus = string(v.EffectiveStatus)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int                `json:"total"`
}

// ListTransactionsResponse represents a list of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int                    `json:"total"`
}

// ListPaymentsResponse represents a list of payments.
type ListPaymentsResponse struct {
	Payments []*PaymentResponse `json:"payments"`
	Total    int                `json:"total"`
}

// TotalsResponse is the ARS/USD headline.
type TotalsResponse struct {
	ARS decimal.Decimal `json:"ars"`
	USD decimal.Decimal `json:"usd"`
}

// TotalsFromDomain converts balance totals to response.
func TotalsFromDomain(t domain.BalanceTotals) TotalsResponse {
	return TotalsResponse{ARS: t.ARS, USD: t.USD}
}

// BalancesResponse holds totals for every account type present.
type BalancesResponse struct {
	Balances map[string]decimal.Decimal `json:"balances"`
}

// BalancesFromDomain converts per-currency totals to response.
func BalancesFromDomain(balances map[domain.Currency]decimal.Decimal) BalancesResponse {
	out := make(map[string]decimal.Decimal, len(balances))
	for currency, amount := range balances {
		out[string(currency)] = amount
	}
	return BalancesResponse{Balances: out}
}

// SessionResponse describes who the API considers the caller to be. The
// access token itself is never echoed.
type SessionResponse struct {
	Scope     string     `json:"scope"`
	UserID    string     `json:"user_id"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SessionFromReport converts a session report to response.
func SessionFromReport(r usecase.SessionReport) SessionResponse {
	resp := SessionResponse{
		Scope:  r.Scope.String(),
		UserID: r.Scope.UserID(),
	}
	if r.Session != nil {
		resp.Email = r.Session.Email
		resp.Role = r.Session.Role
		if !r.Session.ExpiresAt.IsZero() {
			expires := r.Session.ExpiresAt
			resp.ExpiresAt = &expires
		}
	}
	return resp
}

// ConnectionResponse reports a backend round trip.
type ConnectionResponse struct {
	OK        bool    `json:"ok"`
	LatencyMS float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// ConnectionFromReport converts a connection report to response.
func ConnectionFromReport(r usecase.ConnectionReport) ConnectionResponse {
	return ConnectionResponse{
		OK:        r.OK,
		LatencyMS: float64(r.Latency.Microseconds()) / 1000,
		Error:     r.Error,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
