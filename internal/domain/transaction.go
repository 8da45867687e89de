package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionIncoming TransactionType = "incoming"
	TransactionOutgoing TransactionType = "outgoing"
)

// IsValid reports whether t is incoming or outgoing.
func (t TransactionType) IsValid() bool {
	return t == TransactionIncoming || t == TransactionOutgoing
}

// Known shopping categories offered by the dashboard. Stored categories are free-form.
const (
	CategoryShopping      = "shopping"
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryEntertainment = "entertainment"
	CategoryHousing       = "housing"
)

// DefaultCategory is used when a transaction is added without a category.
const DefaultCategory = CategoryShopping

// Transaction is a single movement of money. Account is a denormalized label of
// the account it was made from, not a reference.
type Transaction struct {
	ID          string
	Title       string
	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	Category    string
	Timestamp   time.Time
	Account     string
	UserID      string
}

// SignMatchesType reports whether the amount sign agrees with the direction.
// Zero amounts agree with both directions.
func (t *Transaction) SignMatchesType() bool {
	switch t.Type {
	case TransactionOutgoing:
		return !t.Amount.IsPositive()
	case TransactionIncoming:
		return !t.Amount.IsNegative()
	default:
		return true
	}
}

// SignedAmount applies the direction to an amount: outgoing is always negative,
// incoming always positive, regardless of the sign the caller typed.
func SignedAmount(amount decimal.Decimal, typ TransactionType) decimal.Decimal {
	if typ == TransactionOutgoing {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// TransactionPatch is a partial update; nil fields are left untouched.
// The amount is stored as given: the sign is not re-derived from Type.
type TransactionPatch struct {
	Title       *string
	Description *string
	Amount      *decimal.Decimal
	Type        *TransactionType
	Category    *string
	Timestamp   *time.Time
	Account     *string
}

// IsEmpty reports whether the patch carries no field.
func (p TransactionPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Amount == nil && p.Type == nil &&
		p.Category == nil && p.Timestamp == nil && p.Account == nil
}

// Validate checks every field present in the patch.
func (p TransactionPatch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	return nil
}
