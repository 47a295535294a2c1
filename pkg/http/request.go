package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// MaxBodyBytes caps JSON request bodies
const MaxBodyBytes = 1 << 20

// IPConfig holds configuration for client IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges of trusted proxies
}

// DecodeJSON decodes a single JSON object from the request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

// ExtractClientIP returns the client address for audit logging and rate
// limiting. Forwarding headers are honoured only when the direct peer is a
// trusted proxy, otherwise RemoteAddr is used.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := remoteAddr(r)
	if config == nil || !inNetworks(remoteIP, config.TrustedProxies) {
		return remoteIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, candidate := range strings.Split(xff, ",") {
			candidate = strings.TrimSpace(candidate)
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return remoteIP
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func inNetworks(ip string, cidrs []string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(addr) {
			return true
		}
	}
	return false
}
