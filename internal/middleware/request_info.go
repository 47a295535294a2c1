package middleware

import (
	"net/http"

	"github.com/BradenHooton/bizadmin/internal/auth"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
)

// RequestInfo stores the client IP and user agent on the request context
// for audit logging.
func RequestInfo(ipConfig *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithRequestInfo(r.Context(), auth.RequestInfo{
				IPAddress: pkghttp.ExtractClientIP(r, ipConfig),
				UserAgent: r.UserAgent(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
