package types

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	NewContext() context.Context
	TimeNow() time.Time
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Filter is used to dynamically modify queries. A zero Limit means no limit.
type Filter struct {
	Where  string
	Args   []any
	Limit  int
	Offset int
}

// NewFilter creates a new query filter.
func NewFilter(where string, args []any) *Filter {
	return &Filter{Where: where, Args: args}
}

// And joins f2 with f1 using an AND condition. The limit and offset of f1 are
// kept.
func (f1 *Filter) And(f2 *Filter) *Filter {
	return &Filter{
		Where:  fmt.Sprintf("(%s) AND (%s)", f1.Where, f2.Where),
		Args:   slices.Concat(f1.Args, f2.Args),
		Limit:  f1.Limit,
		Offset: f1.Offset,
	}
}

// Page returns a copy of the filter that selects a single page of results.
func (f1 *Filter) Page(page, pageSize int) *Filter {
	var f Filter
	if f1 != nil {
		f = *f1
		f.Args = slices.Clone(f1.Args)
	}
	f.Limit = pageSize
	f.Offset = page * pageSize
	return &f
}

// Clauses returns the WHERE clause, and the LIMIT and OFFSET clauses of the
// filter, with the arguments of each. A nil filter matches all rows.
func (f1 *Filter) Clauses() (where string, whereArgs []any, limit string, limitArgs []any) {
	if f1 == nil {
		return "WHERE 1=1", nil, "", nil
	}

	where = "WHERE 1=1"
	if f1.Where != "" {
		where = "WHERE " + f1.Where
	}
	if f1.Limit > 0 {
		limit = "LIMIT ? OFFSET ?"
		limitArgs = []any{f1.Limit, f1.Offset}
	}

	return where, slices.Clone(f1.Args), limit, limitArgs
}
