package postgres

import (
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

const testUserID = "9b2f6a1e-4c1d-4a8e-9f53-2f1c8a7d6e10"

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

// sequenceIDs hands out predictable ids.
type sequenceIDs struct {
	n int
}

func (g *sequenceIDs) Generate() string {
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}
