package postgres

import (
	"testing"

	"github.com/google/uuid"
)

func TestULIDGeneratorProducesUUIDs(t *testing.T) {
	gen := NewULIDGenerator()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("generated id %q is not a uuid: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
