package player

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveURLs(t *testing.T) {
	tests := []struct {
		name     string
		origin   Origin
		media    string
		subtitle string
	}{
		{"https host", Origin{Scheme: "https", Host: "example.com"}, "https://example.com/video", "https://example.com/sub"},
		{"http host with port", Origin{Scheme: "http", Host: "localhost:3000"}, "http://localhost:3000/video", "http://localhost:3000/sub"},
		{"ip address", Origin{Scheme: "http", Host: "192.168.1.20"}, "http://192.168.1.20/video", "http://192.168.1.20/sub"},
		{"ipv6 literal", Origin{Scheme: "http", Host: "[::1]:8080"}, "http://[::1]:8080/video", "http://[::1]:8080/sub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := DeriveURLs(tt.origin)
			assert.Equal(t, tt.media, urls.MediaURL)
			assert.Equal(t, tt.subtitle, urls.SubtitleURL)
		})
	}
}

func TestDeriveURLs_ShareSchemeAndHost(t *testing.T) {
	origins := []Origin{
		{Scheme: "https", Host: "example.com"},
		{Scheme: "http", Host: "localhost:3000"},
		{Scheme: "https", Host: "media.example.org:8443"},
	}

	for _, origin := range origins {
		urls := DeriveURLs(origin)

		media, err := url.Parse(urls.MediaURL)
		require.NoError(t, err)
		subtitle, err := url.Parse(urls.SubtitleURL)
		require.NoError(t, err)

		assert.Equal(t, origin.Scheme, media.Scheme)
		assert.Equal(t, media.Scheme, subtitle.Scheme)
		assert.Equal(t, origin.Host, media.Host)
		assert.Equal(t, media.Host, subtitle.Host)
		assert.Equal(t, "/video", media.Path)
		assert.Equal(t, "/sub", subtitle.Path)
	}
}

func TestDeriveURLs_Idempotent(t *testing.T) {
	origin := Origin{Scheme: "https", Host: "example.com"}
	assert.Equal(t, DeriveURLs(origin), DeriveURLs(origin))
}

func TestOriginFromRequest_PlainHTTP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost:3000/", nil)

	origin := OriginFromRequest(req, false)

	assert.Equal(t, Origin{Scheme: "http", Host: "localhost:3000"}, origin)
}

func TestOriginFromRequest_TLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	req.TLS = &tls.ConnectionState{}

	origin := OriginFromRequest(req, false)

	assert.Equal(t, Origin{Scheme: "https", Host: "example.com"}, origin)
}

func TestOriginFromRequest_IgnoresForwardedHeadersByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://10.0.0.5:8080/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "evil.example")

	origin := OriginFromRequest(req, false)

	assert.Equal(t, Origin{Scheme: "http", Host: "10.0.0.5:8080"}, origin)
}

func TestOriginFromRequest_TrustedProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://10.0.0.5:8080/", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	req.Header.Set("X-Forwarded-Host", "example.com, 10.0.0.5:8080")

	origin := OriginFromRequest(req, true)

	assert.Equal(t, Origin{Scheme: "https", Host: "example.com"}, origin)
}

func TestOriginFromRequest_TrustedProxyWithoutHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost:3000/", nil)

	origin := OriginFromRequest(req, true)

	assert.Equal(t, Origin{Scheme: "http", Host: "localhost:3000"}, origin)
}
