package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subplay/subplay/internal/httputil"
)

func serveWithSecurity(cfg SecurityConfig, next http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	securityHeaders(cfg)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestSecurityHeaders_SetsBaseline(t *testing.T) {
	rec := serveWithSecurity(SecurityConfig{}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "camera=()")

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "media-src 'self'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_NonceMatchesContext(t *testing.T) {
	var seen string
	rec := serveWithSecurity(SecurityConfig{}, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = httputil.Nonce(r.Context())
	}))

	require.NotEmpty(t, seen)
	match := cspNonce.FindAllStringSubmatch(rec.Header().Get("Content-Security-Policy"), -1)
	require.Len(t, match, 2)
	assert.Equal(t, seen, match[0][1])
	assert.Equal(t, seen, match[1][1])
}

func TestSecurityHeaders_NonceChangesPerRequest(t *testing.T) {
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	first := serveWithSecurity(SecurityConfig{}, noop).Header().Get("Content-Security-Policy")
	second := serveWithSecurity(SecurityConfig{}, noop).Header().Get("Content-Security-Policy")

	assert.NotEqual(t, first, second)
}

func TestSecurityHeaders_StrictTransportOnHTTPS(t *testing.T) {
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	rec := serveWithSecurity(SecurityConfig{BaseURL: "https://videos.example.org"}, noop)

	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}
