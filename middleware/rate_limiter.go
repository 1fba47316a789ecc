package middleware

import (
	"net/http"
	"sync"
	"time"

	"mindbloom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	visitors map[string]*visitor
	perMin   int
	mu       sync.Mutex
}

func newRateLimiterStore(perMin int) *rateLimiterStore {
	if perMin <= 0 {
		perMin = 200
	}
	return &rateLimiterStore{visitors: make(map[string]*visitor), perMin: perMin}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep forgets visitors idle for longer than limiterIdleTimeout.
func (s *rateLimiterStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ip, v := range s.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTimeout {
			delete(s.visitors, ip)
		}
	}
}

// RateLimitMiddleware limits requests per IP address to perMin per minute.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	store := newRateLimiterStore(perMin)
	var lastSweep time.Time
	var sweepMu sync.Mutex

	return func(c *gin.Context) {
		logger := zap.L()
		now := time.Now()

		sweepMu.Lock()
		if now.Sub(lastSweep) > limiterIdleTimeout {
			lastSweep = now
			go store.sweep(now)
		}
		sweepMu.Unlock()

		ip := c.ClientIP()
		if !store.getLimiter(ip, now).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			if utils.WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
				return
			}
			c.HTML(http.StatusTooManyRequests, "error.html", gin.H{
				"Title":   "Too many requests",
				"Message": "Rate limit exceeded. Try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
