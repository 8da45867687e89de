package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		typ    TransactionType
		want   string
	}{
		{"outgoing positive input", "25.50", TransactionOutgoing, "-25.5"},
		{"outgoing negative input", "-25.50", TransactionOutgoing, "-25.5"},
		{"incoming positive input", "100", TransactionIncoming, "100"},
		{"incoming negative input", "-100", TransactionIncoming, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignedAmount(decimal.RequireFromString(tt.amount), tt.typ)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("SignedAmount(%s, %s) = %s, want %s", tt.amount, tt.typ, got, tt.want)
			}
		})
	}
}

func TestTransaction_SignMatchesType(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		typ    TransactionType
		want   bool
	}{
		{"outgoing negative", -10, TransactionOutgoing, true},
		{"outgoing positive", 10, TransactionOutgoing, false},
		{"incoming positive", 10, TransactionIncoming, true},
		{"incoming negative", -10, TransactionIncoming, false},
		{"zero outgoing", 0, TransactionOutgoing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{Amount: decimal.NewFromInt(tt.amount), Type: tt.typ}
			if got := tx.SignMatchesType(); got != tt.want {
				t.Fatalf("SignMatchesType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionPatch_Validate(t *testing.T) {
	bad := TransactionType("sideways")
	if err := (TransactionPatch{Type: &bad}).Validate(); err != ErrInvalidTransactionType {
		t.Fatalf("expected ErrInvalidTransactionType, got %v", err)
	}

	ok := TransactionIncoming
	if err := (TransactionPatch{Type: &ok}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
