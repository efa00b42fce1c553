package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor holds a per-IP token bucket and the time it was last seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PublicRateLimiter throttles anonymous form submissions per client IP.
type PublicRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublicRateLimiter allows perSecond requests per IP with the given burst.
// A non-positive rate disables limiting.
func NewPublicRateLimiter(perSecond float64, burst int) *PublicRateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &PublicRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  3 * time.Minute,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	if perSecond <= 0 {
		rl.limit = rate.Inf
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes one token for ip.
func (rl *PublicRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter.Allow()
}

// Middleware rejects requests over the limit with 429.
func (rl *PublicRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Code:  CodeTooManyRequests,
			})
			return
		}
		c.Next()
	}
}

// Stop ends the cleanup goroutine.
func (rl *PublicRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *PublicRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PublicRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idleTTL)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}
