package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// dbtx is the subset of *pgxpool.Pool the repositories use.
type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// IDGenerator issues primary keys for new rows.
type IDGenerator interface {
	Generate() string
}

// updateBuilder accumulates SET clauses and their positional arguments.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) setCast(column, cast string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d::%s", column, len(b.args), cast))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

// build returns "UPDATE table SET ... WHERE id = $n RETURNING returning".
func (b *updateBuilder) build(table, id, returning string) (string, []any) {
	args := append(b.args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(b.sets, ", "), len(args), returning)
	return sql, args
}

func notFound(entity, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return err
}

func parseAmount(logger zerolog.Logger, table, id, raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		logger.Warn().Str("table", table).Str("id", id).Str("amount", raw).Msg("unparsable amount, using zero")
		return decimal.Zero
	}
	return amount
}

func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func timestamptzValue(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

func timestamptzPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

// dateValue places a date column at midnight in loc.
func dateValue(d pgtype.Date, loc *time.Location) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}
