package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// DefaultAuthRateLimit returns the limit for login and refresh
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 10}
}

// RateLimitByIP limits requests per client IP. The client IP honours
// forwarding headers only from trusted proxies.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
		}),
	)
}
