package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/prof-ramos/asof-site/internal/domain"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped after idleTTL.
type ipRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	entries   map[string]*limiterEntry
	lastSweep time.Time
	nowFn     func() time.Time
	keyFn     func(*http.Request) string
}

func newIPRateLimiter(limit rate.Limit, burst int, idleTTL time.Duration, keyFn func(*http.Request) string) *ipRateLimiter {
	return &ipRateLimiter{
		keyFn:   keyFn,
		limit:   limit,
		burst:   burst,
		idleTTL: idleTTL,
		entries: make(map[string]*limiterEntry),
		nowFn:   time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for key, entry := range l.entries {
			if now.Sub(entry.lastSeen) > l.idleTTL {
				delete(l.entries, key)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.keyFn(r)) {
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeMappedError(r.Context(), w, "rate_limit", domain.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
