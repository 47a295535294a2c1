package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	proxies := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "2001:db8::/32", "not-a-cidr"}}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		config     *pkghttp.IPConfig
		want       string
	}{
		{"direct client ignores spoofed headers", "203.0.113.10:54321", "1.2.3.4", "192.168.1.1", proxies, "203.0.113.10"},
		{"trusted proxy uses first forwarded ip", "10.0.0.5:443", "198.51.100.7, 10.0.0.1", "", proxies, "198.51.100.7"},
		{"trusted proxy skips invalid entries", "10.0.0.5:443", "garbage, 198.51.100.8", "", proxies, "198.51.100.8"},
		{"trusted proxy falls back to x-real-ip", "10.0.0.5:443", "", "198.51.100.9", proxies, "198.51.100.9"},
		{"ipv6 trusted proxy", "[2001:db8::1]:443", "2001:db8:1::42", "", proxies, "2001:db8:1::42"},
		{"no config never trusts headers", "203.0.113.10:1", "1.2.3.4", "", nil, "203.0.113.10"},
		{"empty config never trusts headers", "127.0.0.1:1", "1.2.3.4", "", &pkghttp.IPConfig{}, "127.0.0.1"},
		{"remote addr without port", "203.0.113.11", "", "", nil, "203.0.113.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Username string `json:"username"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"alice"}`))
	require.NoError(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "alice", dst.Username)

	req = httptest.NewRequest("POST", "/", strings.NewReader(""))
	assert.Error(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"a"}{"username":"b"}`))
	assert.Error(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"username":`))
	assert.Error(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))
}
