package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/lineupsheet/internal/api/apierr"
	"github.com/mcoot/lineupsheet/internal/metrics"
)

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

// RateLimiter keeps a token bucket per client address
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	rps        rate.Limit
	burst      int
	idleTTL    time.Duration
	trustProxy bool
	metrics    *metrics.Recorder
	now        func() time.Time
}

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps sustained requests with the
// given burst per client. When trustProxy is set the first X-Forwarded-For
// entry identifies the client.
func NewRateLimiter(rps float64, burst int, trustProxy bool, recorder *metrics.Recorder) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		rps:        rate.Limit(rps),
		burst:      burst,
		idleTTL:    defaultIdleTTL,
		trustProxy: trustProxy,
		metrics:    recorder,
		now:        time.Now,
	}
}

// Limit wraps a handler so requests over the client's budget get 429.
// A nil limiter passes everything through.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(l.clientKey(r)).Allow() {
			l.metrics.RecordRateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			apierr.WriteError(w, apierr.NewRateLimitedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clients[key]; ok {
		c.lastSeen = now
		return c.lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.clients[key] = &clientLimiter{lim: lim, lastSeen: now}
	return lim
}

func (l *RateLimiter) clientKey(r *http.Request) string {
	if l.trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func (l *RateLimiter) retryAfterSeconds() int {
	if l.rps <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l.rps))))
}

// Cleanup forgets clients idle for longer than the idle TTL
func (l *RateLimiter) Cleanup() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, k)
		}
	}
}

// Len returns the number of tracked clients
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// StartJanitor runs Cleanup periodically until ctx is cancelled
func (l *RateLimiter) StartJanitor(ctx context.Context) {
	if l == nil {
		return
	}
	t := time.NewTicker(defaultCleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}
