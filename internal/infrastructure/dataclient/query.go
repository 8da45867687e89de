package dataclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Query builds one request against a table. Build it with the chained
// methods, then call Execute once.
type Query struct {
	client  *Client
	table   string
	method  string
	columns string
	filters []filter
	order   []string
	body    any
	single  bool
}

type filter struct {
	column string
	expr   string
}

// Select limits the returned columns. For writes it shapes the returned rows.
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq keeps rows whose column equals value.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column: column, expr: "eq." + fmt.Sprint(value)})
	return q
}

// Order sorts by column. Repeated calls add tie-breakers.
func (q *Query) Order(column string, ascending bool) *Query {
	direction := "desc"
	if ascending {
		direction = "asc"
	}
	q.order = append(q.order, column+"."+direction)
	return q
}

// Insert turns the query into an insert of row (a struct, map, or slice of them).
func (q *Query) Insert(row any) *Query {
	q.method = http.MethodPost
	q.body = row
	return q
}

// Update turns the query into a partial update with patch. Filters pick the rows.
func (q *Query) Update(patch any) *Query {
	q.method = http.MethodPatch
	q.body = patch
	return q
}

// Delete turns the query into a delete. Filters pick the rows.
func (q *Query) Delete() *Query {
	q.method = http.MethodDelete
	return q
}

// Single expects exactly one row and decodes it as an object instead of an array.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Execute sends the request and decodes the response into dest, which may be nil.
func (q *Query) Execute(ctx context.Context, dest any) error {
	if q.table == "" {
		return fmt.Errorf("query has no table")
	}

	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		params.Add(f.column, f.expr)
	}
	if len(q.order) > 0 {
		params.Set("order", strings.Join(q.order, ","))
	}

	req, err := q.client.newRequest(ctx, q.method, restPath+"/"+q.table, params, q.body)
	if err != nil {
		return err
	}

	if q.method != http.MethodGet {
		if dest != nil {
			req.Header.Set("Prefer", "return=representation")
		} else {
			req.Header.Set("Prefer", "return=minimal")
		}
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	return q.client.do(req, q.table, dest)
}
