package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// bucket is a token bucket for one caller. Uploads and questions are
// expensive (blob transfer plus an AI call), so limits are counted per
// owner, not per route.
type bucket struct {
	mu       sync.Mutex
	tokens   float64
	lastSeen time.Time
}

func (b *bucket) take(capacity, refillPerSec float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastSeen).Seconds() * refillPerSec
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimiter tracks a bucket per key and drops idle buckets.
type RateLimiter struct {
	mu           sync.RWMutex
	buckets      map[string]*bucket
	capacity     float64
	refillPerSec float64
}

func NewRateLimiter(capacity, refillPerSec int) *RateLimiter {
	rl := &RateLimiter{
		buckets:      make(map[string]*bucket),
		capacity:     float64(capacity),
		refillPerSec: float64(refillPerSec),
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	b, ok := rl.buckets[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if b, ok = rl.buckets[key]; !ok {
			b = &bucket{tokens: rl.capacity, lastSeen: time.Now()}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}
	return b.take(rl.capacity, rl.refillPerSec)
}

// janitor drops buckets idle for more than 10 minutes
func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			b.mu.Lock()
			idle := b.lastSeen.Before(cutoff)
			b.mu.Unlock()
			if idle {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware limits requests per owner (falling back to the
// caller IP when unauthenticated). Health and metrics are exempt.
func RateLimitMiddleware(capacity, refillPerSec int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(capacity, refillPerSec)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			key := GetOwnerFromContext(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
