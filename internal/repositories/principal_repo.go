package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/database"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var principalColumns = []string{
	"id", "username", "email", "display_name", "password_hash", "role", "status",
	"failed_login_attempts", "lockout_end", "last_login_at", "password_changed_at",
	"created_at", "created_by", "modified_at", "modified_by", "is_deleted",
}

var principalSelect = "SELECT " + strings.Join(principalColumns, ", ") + " FROM principals"

type PrincipalRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewPrincipalRepository(db *database.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db, pool: db.Pool}
}

// scanPrincipalRow populates a Principal from a database row
func scanPrincipalRow(scanner rowScanner) (*models.Principal, error) {
	var p models.Principal
	var status string

	err := scanner.Scan(
		&p.ID, &p.Username, &p.Email, &p.DisplayName, &p.PasswordHash, &p.Role, &status,
		&p.FailedLoginAttempts, &p.LockoutEnd, &p.LastLoginAt, &p.PasswordChangedAt,
		&p.CreatedAt, &p.CreatedBy, &p.ModifiedAt, &p.ModifiedBy, &p.IsDeleted,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	p.Status = models.PrincipalStatus(status)

	return &p, nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	query := principalSelect + ` WHERE id = $1 AND is_deleted = false`
	return scanPrincipalRow(r.pool.QueryRow(ctx, query, id))
}

// GetByIdentifier looks a principal up by username or email, ignoring case.
// A username match wins over an email match.
func (r *PrincipalRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Principal, error) {
	query := principalSelect + `
		WHERE (lower(username) = lower($1) OR lower(email) = lower($1)) AND is_deleted = false
		ORDER BY lower(username) = lower($1) DESC
		LIMIT 1`
	return scanPrincipalRow(r.pool.QueryRow(ctx, query, identifier))
}

func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	p.CreatedAt = time.Now().UTC()
	p.CreatedBy = auth.ActorRef(ctx)

	query := `
		INSERT INTO principals (id, username, email, display_name, password_hash, role, status, password_changed_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + strings.Join(principalColumns, ", ")

	return scanPrincipalRow(r.pool.QueryRow(ctx, query,
		p.ID, p.Username, p.Email, p.DisplayName, p.PasswordHash, p.Role, string(p.Status),
		p.PasswordChangedAt, p.CreatedAt, p.CreatedBy,
	))
}

func (r *PrincipalRepository) Query(ctx context.Context, plan *query.Plan[*models.Principal]) (query.PagedResult[*models.Principal], error) {
	return queryPage(ctx, r.pool, "principals", principalColumns, plan, scanPrincipalRow)
}

// RecordFailedLogin increments the failed-attempt counter in one statement
// and sets lockoutEnd when the new count reaches threshold. Rows whose
// lockout is still active at now are not touched.
func (r *PrincipalRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, threshold int, lockoutEnd, now time.Time) (*models.LockoutState, error) {
	query := `
		UPDATE principals
		SET failed_login_attempts = failed_login_attempts + 1,
		    lockout_end = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE lockout_end END
		WHERE id = $1 AND (lockout_end IS NULL OR lockout_end <= $4)
		RETURNING failed_login_attempts, lockout_end
	`

	state := &models.LockoutState{Applied: true}
	err := r.pool.QueryRow(ctx, query, id, threshold, lockoutEnd, now).Scan(&state.FailedAttempts, &state.LockoutEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		state.Applied = false
		err = r.pool.QueryRow(ctx,
			`SELECT failed_login_attempts, lockout_end FROM principals WHERE id = $1`, id,
		).Scan(&state.FailedAttempts, &state.LockoutEnd)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record failed login: %w", database.MapPostgresError(err))
	}
	return state, nil
}

// RecordSuccessfulLogin clears the lockout state, stamps lastLoginAt and
// stores the session's refresh token in one transaction.
func (r *PrincipalRepository) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time, token *models.RefreshToken) error {
	query := `
		UPDATE principals SET failed_login_attempts = 0, lockout_end = NULL, last_login_at = $2
		WHERE id = $1
	`
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := execOne(ctx, tx, query, id, now); err != nil {
			return err
		}
		return insertRefreshToken(ctx, tx, token)
	})
}

// Unlock is the administrative reset of the lockout state.
func (r *PrincipalRepository) Unlock(ctx context.Context, id uuid.UUID, now time.Time) error {
	query := `
		UPDATE principals SET failed_login_attempts = 0, lockout_end = NULL, modified_at = $2, modified_by = $3
		WHERE id = $1 AND is_deleted = false
	`
	return execOne(ctx, r.pool, query, id, now, auth.ActorRef(ctx))
}

// UpdatePassword stores a new hash. A non-empty revokeReason also revokes
// every active refresh token of the principal in the same transaction and
// the revoked count is returned.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, now time.Time, revokeReason string) (int64, error) {
	query := `
		UPDATE principals SET password_hash = $2, password_changed_at = $3, modified_at = $3, modified_by = $4
		WHERE id = $1 AND is_deleted = false
	`
	var revoked int64
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := execOne(ctx, tx, query, id, hash, now, auth.ActorRef(ctx)); err != nil {
			return err
		}
		if revokeReason == "" {
			return nil
		}
		n, err := revokeAllForPrincipal(ctx, tx, id, revokeReason, now)
		revoked = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return revoked, nil
}

// UpdateStatus applies a status change. A non-empty revokeReason also
// revokes every active refresh token of the principal in the same
// transaction.
func (r *PrincipalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PrincipalStatus, now time.Time, revokeReason string) (*models.Principal, error) {
	query := `
		UPDATE principals SET status = $2, modified_at = $3, modified_by = $4
		WHERE id = $1 AND is_deleted = false
		RETURNING ` + strings.Join(principalColumns, ", ")

	var p *models.Principal
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		p, err = scanPrincipalRow(tx.QueryRow(ctx, query, id, string(status), now, auth.ActorRef(ctx)))
		if err != nil {
			return err
		}
		if revokeReason == "" {
			return nil
		}
		_, err = revokeAllForPrincipal(ctx, tx, id, revokeReason, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func execOne(ctx context.Context, q database.Querier, query string, args ...any) error {
	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
