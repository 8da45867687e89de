package domain

import "errors"

var (
	// Record errors
	ErrNotFound     = errors.New("record not found")
	ErrEmptyPatch   = errors.New("update has no fields")
	ErrInvalidID    = errors.New("invalid ID format")
	ErrInvalidTitle = errors.New("invalid title")

	// Amount errors
	ErrInvalidAmount  = errors.New("invalid amount - please enter a valid number")
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")

	// Enumeration errors
	ErrInvalidCurrency        = errors.New("invalid account type")
	ErrInvalidTransactionType = errors.New("transaction type must be incoming or outgoing")
	ErrInvalidPaymentStatus   = errors.New("invalid payment status")
	ErrInvalidPaymentType     = errors.New("invalid payment type")
	ErrInvalidDate            = errors.New("invalid date")
)
