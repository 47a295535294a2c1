package logger

import (
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@*******.com")
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	local = maskTail(local)

	labels := strings.Split(domain, ".")
	for i := 0; i < len(labels)-1; i++ {
		labels[i] = strings.Repeat("*", len(labels[i]))
	}
	return local + "@" + strings.Join(labels, ".")
}

// SanitizedIdentifier masks a login identifier, which may be a username or
// an email address.
func SanitizedIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return SanitizedEmail(identifier)
	}
	return maskTail(identifier)
}

func maskTail(s string) string {
	if len(s) <= 1 {
		return s
	}
	return s[:1] + strings.Repeat("*", len(s)-1)
}

var sensitiveParams = []string{
	"password", "token", "secret", "api_key", "apikey", "email", "auth",
}

// SanitizeQueryString reports whether a raw query string names a sensitive
// parameter and must be redacted entirely.
func SanitizeQueryString(rawQuery string) bool {
	q := strings.ToLower(rawQuery)
	for _, p := range sensitiveParams {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}
