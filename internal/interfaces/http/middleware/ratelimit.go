package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per key. A bucket holds limit
// tokens and refills at limit per window, so a quiet client may burst the
// whole allowance at once.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     int
	window    time.Duration
	every     rate.Limit
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		limit:     limit,
		window:    window,
		every:     rate.Every(window / time.Duration(limit)),
		lastSweep: time.Now(),
	}
}

// Allow takes a token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()
	return rl.bucketFor(key, now).limiter.AllowN(now, 1)
}

// Remaining is the number of whole tokens left in key's bucket.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	rl.mu.Unlock()
	if !ok {
		return rl.limit
	}
	tokens := int(math.Floor(b.limiter.TokensAt(time.Now())))
	return max(0, min(tokens, rl.limit))
}

// RetryAfter is how long an empty bucket takes to earn one token.
func (rl *RateLimiter) RetryAfter() time.Duration {
	return rl.window / time.Duration(rl.limit)
}

func (rl *RateLimiter) bucketFor(key string, now time.Time) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > 2*rl.window {
		rl.sweep(now)
	}
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// sweep drops buckets idle for a full window; they would be full again anyway.
// Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.window {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit keys the budget by owner and client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return GetSession(c).OwnerID + ":" + c.ClientIP()
	})
}

// ExportRateLimit keys the budget by owner alone. Each export drives a
// headless browser, so it gets its own, tighter limiter.
func ExportRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return "export:" + GetSession(c).OwnerID
	})
}

func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	limitHeader := strconv.Itoa(limiter.limit)
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.RetryAfter().Seconds())))

	return func(c *gin.Context) {
		key := keyFunc(c)
		c.Header("X-RateLimit-Limit", limitHeader)

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
