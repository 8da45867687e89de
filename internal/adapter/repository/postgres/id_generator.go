package postgres

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates time-ordered ids in UUID form, so they fit uuid
// primary keys while keeping insertion order.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new id.
func (g *ULIDGenerator) Generate() string {
	return uuid.UUID(ulid.Make()).String()
}
