package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTypeAccess = "access"

// Claims is the payload of an access token.
type Claims struct {
	Type        string `json:"type"`
	PrincipalID string `json:"principal_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens
type TokenManager struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, accessExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:            []byte(secret),
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// AccessTokenExpiry is the lifetime of issued access tokens.
func (tm *TokenManager) AccessTokenExpiry() time.Duration {
	return tm.accessTokenExpiry
}

// GenerateAccessToken creates a short-lived access token with a unique JTI
func (tm *TokenManager) GenerateAccessToken(p *models.Principal) (string, error) {
	now := tm.now()
	claims := &Claims{
		Type:        tokenTypeAccess,
		PrincipalID: p.ID.String(),
		Username:    p.Username,
		Role:        p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies a token and returns its claims
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.Type != tokenTypeAccess {
		return nil, fmt.Errorf("%w: not an access token", models.ErrUnauthorized)
	}
	if _, err := uuid.Parse(claims.PrincipalID); err != nil {
		return nil, fmt.Errorf("%w: invalid subject", models.ErrUnauthorized)
	}

	return claims, nil
}
