package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long idempotency keys are kept by default
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is the value held under a claimed key until the
	// request completes.
	IdempotencyPending = "processing"
)

// Entity labels used in logs and metrics.
const (
	EntityAccount     = "account"
	EntityTransaction = "transaction"
	EntityPayment     = "payment"
)

// Operation labels used in logs and metrics.
const (
	OpList   = "list"
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpTotals = "totals"
)
