package httputil

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	log "github.com/sirupsen/logrus"
)

const nonceBytes = 16

type nonceKey struct{}

// NewNonce returns a fresh base64url CSP nonce. On a randomness failure it
// returns "", which leaves every inline script and style blocked.
func NewNonce() string {
	var b [nonceBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		log.WithError(err).Error("failed to generate CSP nonce")
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}

func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey{}, nonce)
}

// Nonce returns the request's CSP nonce, or "" outside the security middleware.
func Nonce(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}
