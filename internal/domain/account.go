package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the account type; it decides which balance bucket an account feeds.
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

var validCurrencies = map[Currency]bool{
	CurrencyARS: true,
	CurrencyUSD: true,
	CurrencyEUR: true,
}

// IsValid reports whether c is one of the supported account currencies.
func (c Currency) IsValid() bool {
	return validCurrencies[c]
}

// Account represents a money holder owned by a single user.
type Account struct {
	ID          string
	Title       string
	Description string
	Amount      decimal.Decimal
	Type        Currency
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountPatch is a partial update; nil fields are left untouched.
type AccountPatch struct {
	Title       *string
	Description *string
	Amount      *decimal.Decimal
	Type        *Currency
}

// IsEmpty reports whether the patch carries no field.
func (p AccountPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Amount == nil && p.Type == nil
}

// Validate checks every field present in the patch.
func (p AccountPatch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := ValidateCurrency(string(*p.Type)); err != nil {
			return err
		}
	}
	return nil
}

// AccountBalance is the amount/type projection used for aggregation.
// Amount is kept as the raw stored text so that each row is parsed on its own.
type AccountBalance struct {
	Amount string
	Type   Currency
}
