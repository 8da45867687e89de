package rest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/martin5169/financial-dashboard/internal/domain"
)

// Table names.
const (
	tableAccounts     = "accounts"
	tableTransactions = "transactions"
	tablePayments     = "payments"
)

// rawAmount keeps a numeric column as text. The service may send a JSON number
// or a string; either way parsing happens later so a bad value cannot fail a
// whole response.
type rawAmount string

func (a *rawAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = rawAmount(text)
		return nil
	}
	*a = rawAmount(s)
	return nil
}

// wireAmount renders a decimal as a JSON number.
func wireAmount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// converter maps wire values to domain values, logging what it cannot parse.
type converter struct {
	loc    *time.Location
	logger zerolog.Logger
}

func newConverter(loc *time.Location, logger zerolog.Logger) converter {
	if loc == nil {
		loc = time.UTC
	}
	return converter{loc: loc, logger: logger}
}

func (c converter) amount(table, id string, raw rawAmount) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		c.logger.Warn().Str("table", table).Str("id", id).Str("amount", string(raw)).Msg("unparsable amount, using zero")
		return decimal.Zero
	}
	return amount
}

func (c converter) time(table, id, column string, raw *string) time.Time {
	if raw == nil || *raw == "" {
		return time.Time{}
	}
	t, err := domain.ParseTimestamp(*raw, c.loc)
	if err != nil {
		c.logger.Warn().Str("table", table).Str("id", id).Str("column", column).Str("value", *raw).Msg("unparsable date")
		return time.Time{}
	}
	return t
}

func (c converter) optionalTime(table, id, column string, raw *string) *time.Time {
	t := c.time(table, id, column, raw)
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// patchBody collects the columns of a partial update.
type patchBody map[string]any

func (p patchBody) setString(column string, v *string) {
	if v != nil {
		p[column] = *v
	}
}

func (p patchBody) setAmount(column string, v *decimal.Decimal) {
	if v != nil {
		p[column] = wireAmount(*v)
	}
}

func (p patchBody) setTime(column string, v *time.Time) {
	if v != nil {
		p[column] = v.Format(time.RFC3339Nano)
	}
}
