package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/bizadmin/internal/models"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/google/uuid"
)

// PrincipalLookup fetches the current state of a principal.
type PrincipalLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Principal, error)
}

// AuthMiddleware validates bearer access tokens and injects the claims and
// acting principal into the request context
func AuthMiddleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Missing authorization header")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				pkghttp.WriteUnauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(strings.TrimSpace(tokenString))
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole enforces role-based access control against the principal's
// current role and status, not the values captured in the token.
func RequireRole(principals PrincipalLookup, role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := ActorID(r.Context())
			if !ok {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			p, err := principals.GetByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Authentication required")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if p.Status != models.StatusActive || p.Role != role {
				pkghttp.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
