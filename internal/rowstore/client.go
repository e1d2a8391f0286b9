// Package rowstore defines the generic row-level contract every data service
// transport implements: select with equality filters and one sort column,
// insert, update and delete by id.
package rowstore

import (
	"context"
	"fmt"
	"strings"
)

// Row is one record as a column -> value map.
type Row map[string]any

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
)

// Wire spellings of a nil filter value, as PostgREST writes them.
const (
	wireIsNull    = "is.null"
	wireNotIsNull = "not.is.null"
)

// Encode renders the filter as a query-string value. A nil value becomes
// an IS NULL or IS NOT NULL test.
func (f Filter) Encode() string {
	if f.Value == nil {
		if f.Op == OpNeq {
			return wireNotIsNull
		}
		return wireIsNull
	}
	return fmt.Sprintf("%s.%v", f.Op, f.Value)
}

// ParseNullFilter recognises the nil spellings written by Encode.
func ParseNullFilter(column, raw string) (Filter, bool) {
	switch raw {
	case wireIsNull:
		return Filter{Column: column, Op: OpEq}, true
	case wireNotIsNull:
		return Filter{Column: column, Op: OpNeq}, true
	}
	return Filter{}, false
}

// ParseOp accepts the wire spelling of an operator.
func ParseOp(s string) (Op, error) {
	switch Op(strings.ToLower(s)) {
	case OpEq:
		return OpEq, nil
	case OpNeq:
		return OpNeq, nil
	}
	return "", fmt.Errorf("%w: unsupported operator %q", ErrQuery, s)
}

// Filter restricts a select to rows whose column compares to Value.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Order sorts a select by one column.
type Order struct {
	Column     string
	Descending bool
}

// Query describes a select. The zero value selects every visible row
// in backend order.
type Query struct {
	Filters []Filter
	Order   *Order
}

// NewQuery returns an empty query.
func NewQuery() Query {
	return Query{}
}

func (q Query) with(f Filter) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, f)
	return q
}

// Eq adds an equality filter.
func (q Query) Eq(column string, value any) Query {
	return q.with(Filter{Column: column, Op: OpEq, Value: value})
}

// Neq adds an inequality filter.
func (q Query) Neq(column string, value any) Query {
	return q.with(Filter{Column: column, Op: OpNeq, Value: value})
}

// Asc sorts ascending by column, replacing any previous order.
func (q Query) Asc(column string) Query {
	q.Order = &Order{Column: column}
	return q
}

// Desc sorts descending by column, replacing any previous order.
func (q Query) Desc(column string) Query {
	q.Order = &Order{Column: column, Descending: true}
	return q
}

// Client is the data service as seen by the application. Every call acts on
// behalf of the user carried by ctx (see WithUser).
type Client interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, fields Row) error
	Delete(ctx context.Context, table, id string) error
}
