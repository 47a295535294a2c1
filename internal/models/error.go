package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountDisabled  = errors.New("account is disabled")
	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountLocked    = errors.New("account is temporarily locked")
)

// LockedError is returned for any login attempt while a lockout is active.
type LockedError struct {
	Until     time.Time
	Remaining time.Duration
}

func NewLockedError(until, now time.Time) *LockedError {
	return &LockedError{Until: until, Remaining: until.Sub(now)}
}

// RemainingMinutes is the wait time rounded up, never less than one.
func (e *LockedError) RemainingMinutes() int {
	m := int(math.Ceil(e.Remaining.Minutes()))
	if m < 1 {
		m = 1
	}
	return m
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("Account is locked. Try again in %d minute(s).", e.RemainingMinutes())
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked || target == ErrForbidden
}

// AccountStatusError rejects a correct password on a non-active account.
type AccountStatusError struct {
	Status PrincipalStatus
}

func (e *AccountStatusError) Error() string {
	switch e.Status {
	case StatusSuspended:
		return "Account is suspended. Contact an administrator."
	case StatusInactive:
		return "Account is inactive."
	}
	return "Account is not active."
}

func (e *AccountStatusError) Is(target error) bool {
	switch target {
	case ErrForbidden:
		return true
	case ErrAccountSuspended:
		return e.Status == StatusSuspended
	case ErrAccountDisabled:
		return e.Status == StatusInactive
	}
	return false
}

// ValidationError carries per-field messages for ERROR.VALIDATION responses.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Message: "Validation failed",
		Fields:  map[string][]string{field: {message}},
	}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrBadRequest
}
