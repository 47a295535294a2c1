package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	MinPasswordLen    = 8
	MaxPasswordLen    = 72 // bcrypt ignores input past 72 bytes
)

// PasswordValidationError lists every unmet password rule
type PasswordValidationError struct {
	Errors []string
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return "password does not meet requirements: " + strings.Join(e.Errors, "; ")
}

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "password123!": true,
	"12345678": true, "123456789": true, "qwerty123": true, "letmein1": true,
	"welcome1": true, "admin123": true, "passw0rd": true, "p@ssw0rd": true,
	"trustno1": true, "iloveyou": true, "sunshine1": true, "football1": true,
}

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare returns nil when password matches hashed
func (h *PasswordHasher) Compare(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

// HashPassword hashes with DefaultBcryptCost
func HashPassword(password string) (string, error) {
	return NewPasswordHasher(DefaultBcryptCost).Hash(password)
}

func ComparePassword(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

// ValidatePassword enforces the password policy: length, upper, lower,
// digit, special character and not a common password.
func ValidatePassword(password string) error {
	var errs []string

	if len(password) < MinPasswordLen {
		errs = append(errs, fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	if len(password) > MaxPasswordLen {
		errs = append(errs, fmt.Sprintf("must be at most %d bytes", MaxPasswordLen))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		errs = append(errs, "must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "must contain at least one digit")
	}
	if !hasSpecial {
		errs = append(errs, "must contain at least one special character")
	}
	if commonPasswords[strings.ToLower(password)] {
		errs = append(errs, "is too common")
	}

	if len(errs) > 0 {
		return &PasswordValidationError{Errors: errs}
	}
	return nil
}
