package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/greenprint-app/greenprint-backend/internal/errors"
	"github.com/greenprint-app/greenprint-backend/internal/util"
)

// ipBucket is a token bucket for a single client IP
type ipBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter applies a per-IP token bucket. Buckets idle for longer than
// the cleanup window are dropped to bound memory.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*ipBucket
	maxTokens  float64
	refillRate float64 // tokens per second
}

// NewRateLimiter allows maxRequests per window per IP
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*ipBucket),
		maxTokens:  float64(maxRequests),
		refillRate: float64(maxRequests) / window.Seconds(),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[ip]
	if !ok {
		rl.buckets[ip] = &ipBucket{tokens: rl.maxTokens - 1, lastSeen: now}
		return true
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens += elapsed * rl.refillRate
	if b.tokens > rl.maxTokens {
		b.tokens = rl.maxTokens
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns the gin handler enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			util.RespondWithAPIError(c, apierrors.RateLimited("too many requests, slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit is the general API limit, 100 requests per minute per IP
func RateLimit() gin.HandlerFunc {
	return NewRateLimiter(100, time.Minute).Middleware()
}

// AuthRateLimit is the stricter limit for credential endpoints
func AuthRateLimit() gin.HandlerFunc {
	return NewRateLimiter(10, time.Minute).Middleware()
}
