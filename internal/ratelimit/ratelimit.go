package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/subplay/subplay/internal/httputil"
)

const (
	sweepInterval = 5 * time.Minute
	idleTimeout   = 10 * time.Minute
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter is a per-client token bucket.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64
	burst      float64
	trustProxy bool
	now        func() time.Time
}

// NewLimiter allows requestsPerSecond sustained and burst at once per client.
// Idle clients are forgotten until ctx is cancelled.
func NewLimiter(ctx context.Context, requestsPerSecond float64, burst int, trustProxy bool) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		rate:       requestsPerSecond,
		burst:      float64(burst),
		trustProxy: trustProxy,
		now:        time.Now,
	}
	go l.sweepLoop(ctx)
	return l
}

func (l *Limiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[client]
	if !ok {
		l.buckets[client] = &bucket{tokens: l.burst - 1, lastSeen: now}
		return true
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for client, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleTimeout {
			delete(l.buckets, client)
		}
	}
}

func (l *Limiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(httputil.ClientIP(r, l.trustProxy)) {
			w.Header().Set("Retry-After", "10")
			httputil.WriteError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
