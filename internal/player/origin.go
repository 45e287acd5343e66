package player

import (
	"net/http"
	"strings"
)

const (
	MediaPath    = "/video"
	SubtitlePath = "/sub"
)

// Origin is the scheme and host the player page was loaded from.
type Origin struct {
	Scheme string
	Host   string
}

func (o Origin) String() string {
	return o.Scheme + "://" + o.Host
}

// OriginURLs holds the two endpoints the player reads from. Both share the
// scheme and host of the origin they were derived from.
type OriginURLs struct {
	MediaURL    string `json:"mediaUrl"`
	SubtitleURL string `json:"subtitleUrl"`
}

// DeriveURLs appends the media and subtitle paths to origin. The origin is
// trusted as-is.
func DeriveURLs(origin Origin) OriginURLs {
	base := origin.String()
	return OriginURLs{
		MediaURL:    base + MediaPath,
		SubtitleURL: base + SubtitlePath,
	}
}

// OriginFromRequest reports the origin r was addressed to. Forwarded headers
// are only honoured when trustProxy is set.
func OriginFromRequest(r *http.Request, trustProxy bool) Origin {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if trustProxy {
		if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto != "" {
			scheme = strings.ToLower(proto)
		}
		if forwardedHost := firstHeaderValue(r, "X-Forwarded-Host"); forwardedHost != "" {
			host = forwardedHost
		}
	}

	return Origin{Scheme: scheme, Host: host}
}

func firstHeaderValue(r *http.Request, name string) string {
	value := r.Header.Get(name)
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}
