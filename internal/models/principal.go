package models

import (
	"slices"
	"time"

	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/google/uuid"
)

type PrincipalStatus string

const (
	StatusActive    PrincipalStatus = "Active"
	StatusInactive  PrincipalStatus = "Inactive"
	StatusSuspended PrincipalStatus = "Suspended"
)

var principalStatuses = []string{string(StatusActive), string(StatusInactive), string(StatusSuspended)}

func (s PrincipalStatus) Valid() bool {
	return slices.Contains(principalStatuses, string(s))
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Principal is an account that can log in. The lockout state
// (FailedLoginAttempts, LockoutEnd) is only changed by login attempts and
// by an administrative unlock.
type Principal struct {
	ID                  uuid.UUID
	Username            string
	Email               string
	DisplayName         string
	PasswordHash        string
	Role                string
	Status              PrincipalStatus
	FailedLoginAttempts int
	LockoutEnd          *time.Time
	LastLoginAt         *time.Time
	PasswordChangedAt   *time.Time
	AuditFields
}

// IsLocked reports whether a lockout is in effect at now.
func (p *Principal) IsLocked(now time.Time) bool {
	return p.LockoutEnd != nil && now.Before(*p.LockoutEnd)
}

// LockoutState is the counter and lockout end after a failed attempt.
// Applied is false when the row was already locked and left untouched.
type LockoutState struct {
	FailedAttempts int
	LockoutEnd     *time.Time
	Applied        bool
}

// PrincipalSchema is the query field registry for principals.
var PrincipalSchema = withAudit(query.NewSchema[*Principal]().
	UUID("id", "id", func(p *Principal) uuid.UUID { return p.ID }).
	Text("username", "username", func(p *Principal) string { return p.Username }).
	Text("email", "email", func(p *Principal) string { return p.Email }).
	Text("displayName", "display_name", func(p *Principal) string { return p.DisplayName }).
	Text("role", "role", func(p *Principal) string { return p.Role }).
	Enum("status", "status", principalStatuses, func(p *Principal) int {
		return slices.Index(principalStatuses, string(p.Status))
	}).
	Int("failedLoginAttempts", "failed_login_attempts", func(p *Principal) int { return p.FailedLoginAttempts }).
	TimePtr("lockoutEnd", "lockout_end", func(p *Principal) *time.Time { return p.LockoutEnd }).
	TimePtr("lastLoginAt", "last_login_at", func(p *Principal) *time.Time { return p.LastLoginAt }).
	Searchable("username", "email", "displayName"),
	func(p *Principal) AuditFields { return p.AuditFields })
