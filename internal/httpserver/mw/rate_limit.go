package mw

import (
	"cmp"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/utils"
)

// RateLimitConfig configures a per client token bucket.
type RateLimitConfig struct {
	Burst        int           // bucket size
	RefillPerMin int           // tokens regained per minute
	IdleTTL      time.Duration // buckets unused for this long are dropped
	TrustProxy   bool
	Now          func() time.Time // defaults to time.Now
}

type tokenBucket struct {
	tokens  float64
	updated time.Time
}

type rateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*tokenBucket
	capacity float64
	perSec   float64
	idleTTL  time.Duration
	swept    time.Time
}

func newRateLimiter(cfg RateLimitConfig, now time.Time) *rateLimiter {
	return &rateLimiter{
		buckets:  make(map[string]*tokenBucket),
		capacity: float64(max(cfg.Burst, 1)),
		perSec:   float64(max(cfg.RefillPerMin, 1)) / 60,
		idleTTL:  cmp.Or(cfg.IdleTTL, 15*time.Minute),
		swept:    now,
	}
}

// take consumes one token for key. When none is left it returns the
// number of seconds until the next one.
func (l *rateLimiter) take(key string, now time.Time) (ok bool, remaining, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.updated) > l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, found := l.buckets[key]
	if !found {
		b = &tokenBucket{tokens: l.capacity, updated: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSec)
		b.updated = now
	}

	if b.tokens < 1 {
		wait := int(math.Ceil((1 - b.tokens) / l.perSec))
		return false, 0, max(wait, 1)
	}
	b.tokens--
	return true, int(b.tokens), 0
}

// RateLimit answers 429 once a client has spent its burst.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	l := newRateLimiter(cfg, now())
	limit := strconv.Itoa(int(l.capacity))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retry := l.take(utils.ClientIP(r, cfg.TrustProxy), now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
