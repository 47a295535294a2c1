package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/bizadmin/internal/database"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RefreshTokenRepository struct {
	db *database.DB
}

func NewRefreshTokenRepository(db *database.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

const refreshTokenColumns = `id, principal_id, token_hash, issued_at, expires_at, revoked_at, revoked_reason, replaced_by_id`

func scanRefreshTokenRow(scanner rowScanner) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := scanner.Scan(
		&t.ID, &t.PrincipalID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt,
		&t.RevokedAt, &t.RevokedReason, &t.ReplacedByID,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &t, nil
}

func insertRefreshToken(ctx context.Context, q database.Querier, t *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, principal_id, token_hash, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := q.Exec(ctx, query, t.ID, t.PrincipalID, t.TokenHash, t.IssuedAt, t.ExpiresAt); err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", database.MapPostgresError(err))
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	return scanRefreshTokenRow(r.db.Pool.QueryRow(ctx, query, hash))
}

// Rotate inserts next and revokes the token identified by oldID in one
// transaction. It fails with ErrUnauthorized when oldID was already revoked,
// so a token can be rotated at most once.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken, now time.Time) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := insertRefreshToken(ctx, tx, next); err != nil {
			return err
		}

		query := `
			UPDATE refresh_tokens SET revoked_at = $2, revoked_reason = $3, replaced_by_id = $4
			WHERE id = $1 AND revoked_at IS NULL
		`
		result, err := tx.Exec(ctx, query, oldID, now, models.RevokeReasonRotated, next.ID)
		if err != nil {
			return fmt.Errorf("failed to revoke rotated token: %w", database.MapPostgresError(err))
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("%w: refresh token already used", models.ErrUnauthorized)
		}
		return nil
	})
}

// Revoke marks the token revoked. Revoking an already revoked token is a no-op.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = $2, revoked_reason = $3
		WHERE id = $1 AND revoked_at IS NULL
	`
	if _, err := r.db.Pool.Exec(ctx, query, id, now, reason); err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// revokeAllForPrincipal revokes every active token of a principal and
// returns how many were revoked.
func revokeAllForPrincipal(ctx context.Context, q database.Querier, principalID uuid.UUID, reason string, now time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens SET revoked_at = $2, revoked_reason = $3
		WHERE principal_id = $1 AND revoked_at IS NULL
	`
	result, err := q.Exec(ctx, query, principalID, now, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", database.MapPostgresError(err))
	}
	return result.RowsAffected(), nil
}
