package models

import (
	"context"
	"database/sql"
	"fmt"

	"go.hackfix.me/bulletin/db/types"
)

// filterCount returns the amount of rows of table matching filter. alias is
// the table alias the filter conditions refer to.
func filterCount(ctx context.Context, d types.Querier, table, alias string, filter *types.Filter) (int, error) {
	where, args, _, _ := filter.Clauses()
	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM "%s" %s %s`, table, alias, where)
	var count int
	if err := d.QueryRowContext(ctx, countQ, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed counting %s: %w", table, err)
	}

	return count, nil
}

// insertID returns the row ID of the record created by an INSERT statement.
func insertID(result sql.Result) (uint64, error) {
	id, err := result.LastInsertId()
	switch {
	case err != nil:
		return 0, fmt.Errorf("failed reading inserted row ID: %w", err)
	case id < 1:
		return 0, fmt.Errorf("unexpected inserted row ID: %d", id)
	}

	return uint64(id), nil
}
