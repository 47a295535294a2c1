package models

import (
	"time"

	"github.com/google/uuid"
)

// Revocation reasons stored on refresh tokens
const (
	RevokeReasonRotated         = "rotated"
	RevokeReasonLogout          = "revoked"
	RevokeReasonPasswordChanged = "password_changed"
	RevokeReasonStatusChanged   = "status_changed"
)

// RefreshToken is a persisted refresh credential. Only the SHA-256 hash of
// the opaque value is stored. Tokens are revoked, never deleted.
type RefreshToken struct {
	ID            uuid.UUID
	PrincipalID   uuid.UUID
	TokenHash     string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	RevokedAt     *time.Time
	RevokedReason *string
	ReplacedByID  *uuid.UUID
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
