package server

import (
	"net/http"
	"strings"

	"github.com/subplay/subplay/internal/httputil"
)

type SecurityConfig struct {
	BaseURL string
}

var staticSecurityHeaders = map[string]string{
	"Referrer-Policy":        "no-referrer",
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "SAMEORIGIN",
	"Permissions-Policy":     "camera=(), microphone=(), geolocation=(), fullscreen=(self), picture-in-picture=(self)",
}

// contentSecurityPolicy allows media only from this origin and inline code
// only when it carries nonce.
func contentSecurityPolicy(nonce string) string {
	directives := []string{
		"default-src 'self'",
		"img-src 'self' data:",
		"media-src 'self'",
		"script-src 'self' 'nonce-" + nonce + "'",
		"style-src 'self' 'nonce-" + nonce + "'",
		"connect-src 'self'",
		"frame-ancestors 'self'",
	}
	return strings.Join(directives, "; ") + ";"
}

// securityHeaders issues a CSP nonce per request and exposes it to handlers
// through the request context.
func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := strings.HasPrefix(cfg.BaseURL, "https://")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.NewNonce()

			h := w.Header()
			for name, value := range staticSecurityHeaders {
				h.Set(name, value)
			}
			h.Set("Content-Security-Policy", contentSecurityPolicy(nonce))
			if strictTransport {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(httputil.WithNonce(r.Context(), nonce)))
		})
	}
}
