package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapPostgresError translates driver errors into model sentinels. Unknown
// errors are returned unchanged.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", models.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", models.ErrBadRequest, pgErr.ConstraintName)
		case "23502", "23514": // not_null_violation, check_violation
			return fmt.Errorf("%w: %s", models.ErrBadRequest, pgErr.ColumnName)
		}
	}

	return err
}

// WithTransaction runs fn in a transaction, committing when fn returns nil
// and rolling back otherwise.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}
