package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the stored state of a recurring payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

var validPaymentStatuses = map[PaymentStatus]bool{
	PaymentPending:   true,
	PaymentPaid:      true,
	PaymentOverdue:   true,
	PaymentCancelled: true,
}

// IsValid checks if the status is a known payment status.
func (s PaymentStatus) IsValid() bool {
	return validPaymentStatuses[s]
}

// IsStorable reports whether the status may be written. Overdue is derived
// from the due date and never stored.
func (s PaymentStatus) IsStorable() bool {
	return s.IsValid() && s != PaymentOverdue
}

// IsTerminal reports whether the status no longer depends on the due date.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentCancelled
}

// PaymentType categorizes what a payment is for.
type PaymentType string

const (
	PaymentTypeCreditCard PaymentType = "credit-card"
	PaymentTypeHome       PaymentType = "home"
	PaymentTypeCar        PaymentType = "car"
	PaymentTypePersonal   PaymentType = "personal"
)

var validPaymentTypes = map[PaymentType]bool{
	PaymentTypeCreditCard: true,
	PaymentTypeHome:       true,
	PaymentTypeCar:        true,
	PaymentTypePersonal:   true,
}

// IsValid checks if the type is a known payment type.
func (t PaymentType) IsValid() bool {
	return validPaymentTypes[t]
}

// Payment is a due amount with an expiration date.
type Payment struct {
	ID             string
	Name           string
	Description    string
	Amount         decimal.Decimal
	ExpirationDate time.Time
	PaymentDate    *time.Time
	Status         PaymentStatus
	Type           PaymentType
	UserID         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectiveStatus returns the status to display for p as of now.
//
// Paid and cancelled payments keep their stored status. Any other payment whose
// expiration date falls on a calendar day before now's day (in now's location)
// is overdue. A payment due today is not overdue yet. Rows written as overdue
// by older clients are recomputed and read as pending until their due date passes.
func EffectiveStatus(p *Payment, now time.Time) PaymentStatus {
	if p.Status.IsTerminal() {
		return p.Status
	}

	if !p.ExpirationDate.IsZero() && dayOf(p.ExpirationDate.In(now.Location())).Before(dayOf(now)) {
		return PaymentOverdue
	}

	if p.Status == PaymentOverdue {
		return PaymentPending
	}
	return p.Status
}

// EffectiveStatus is a convenience wrapper around the package-level helper.
func (p *Payment) EffectiveStatus(now time.Time) PaymentStatus {
	return EffectiveStatus(p, now)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// PaymentPatch is a partial update; nil fields are left untouched.
type PaymentPatch struct {
	Name           *string
	Description    *string
	Amount         *decimal.Decimal
	ExpirationDate *time.Time
	PaymentDate    *time.Time
	Status         *PaymentStatus
	Type           *PaymentType
}

// IsEmpty reports whether the patch carries no field.
func (p PaymentPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Amount == nil && p.ExpirationDate == nil &&
		p.PaymentDate == nil && p.Status == nil && p.Type == nil
}

// Validate checks every field present in the patch.
func (p PaymentPatch) Validate() error {
	if p.Name != nil {
		if err := ValidateTitle(*p.Name); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.IsStorable() {
		return ErrInvalidPaymentStatus
	}
	if p.Type != nil && !p.Type.IsValid() {
		return ErrInvalidPaymentType
	}
	return nil
}

// SettlementPatch builds the patch that marks a payment as paid at paidAt.
// A nil amount keeps the stored due amount.
func SettlementPatch(amount *decimal.Decimal, paidAt time.Time) PaymentPatch {
	status := PaymentPaid
	return PaymentPatch{
		Amount:      amount,
		PaymentDate: &paidAt,
		Status:      &status,
	}
}
