package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/bizadmin/internal/database"
	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/jackc/pgx/v5"
)

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...any) error
}

// queryPage runs a count and a page query for plan against table, hiding
// soft-deleted rows.
func queryPage[T any](
	ctx context.Context,
	q database.Querier,
	table string,
	columns []string,
	plan *query.Plan[T],
	scan func(rowScanner) (T, error),
) (query.PagedResult[T], error) {
	b := plan.WhereSQL(query.NewBuilder(table, columns...).Where("is_deleted = false"))

	countSQL, countArgs := b.BuildCount()
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return query.PagedResult[T]{}, fmt.Errorf("failed to count %s: %w", table, database.MapPostgresError(err))
	}

	pageNumber, pageSize := plan.PageNumber(), plan.PageSize()
	if total == 0 || pageNumber-1 > total/pageSize {
		return query.NewPagedResult[T](nil, total, pageNumber, pageSize), nil
	}

	selectSQL, args := plan.PageSQL(plan.OrderSQL(b)).Build()
	rows, err := q.Query(ctx, selectSQL, args...)
	if err != nil {
		return query.PagedResult[T]{}, fmt.Errorf("failed to query %s: %w", table, database.MapPostgresError(err))
	}

	items, err := scanRows(rows, scan)
	if err != nil {
		return query.PagedResult[T]{}, fmt.Errorf("failed to scan %s: %w", table, err)
	}
	return query.NewPagedResult(items, total, pageNumber, pageSize), nil
}

// scanRows iterates through rows and scans each with scan
func scanRows[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}
