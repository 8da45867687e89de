package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTitleLength = 255
	MaxAmount      = "1000000000000" // 1 trillion
)

// DateLayout is the wire layout of date-only columns.
const DateLayout = "2006-01-02"

// ParseAmount parses user or stored amount text as a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// ValidateAmount bounds the magnitude of an amount. Sign is not checked:
// balances and transactions are signed.
func ValidateAmount(amount decimal.Decimal) error {
	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.Abs().GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}
	return nil
}

// ValidateTitle validates a display name (account title, transaction title, payment name).
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidTitle)
	}

	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidTitle, MaxTitleLength)
	}

	return nil
}

// ValidateCurrency validates an account type.
func ValidateCurrency(currency string) error {
	if !Currency(strings.TrimSpace(currency)).IsValid() {
		return fmt.Errorf("%w: %q is not one of ARS, USD, EUR", ErrInvalidCurrency, currency)
	}
	return nil
}

// ValidateID validates a record or user identifier issued by the data service.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return nil
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without a zone
// offset are read in loc; date-only values are placed at midnight in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.UTC
	}

	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}

	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
