package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-IP counter. Apply requests each cost a
// full browser session downstream, so the window is enforced before any
// attempt row is created.
type RateLimiter struct {
	clients map[string]*client
	mu      sync.RWMutex
	rate    int           // requests per window
	window  time.Duration // window length
}

// client tracks requests from one IP within the current window.
type client struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter creates a limiter allowing rate requests per window.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		rate:    rate,
		window:  window,
	}

	go rl.cleanupStale()

	return rl
}

// Limit returns the enforcing middleware.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		entry, exists := rl.clients[ip]
		if !exists {
			rl.clients[ip] = &client{
				windowStart: time.Now(),
				count:       1,
			}
			rl.mu.Unlock()
			c.Next()
			return
		}

		if time.Since(entry.windowStart) > rl.window {
			entry.count = 1
			entry.windowStart = time.Now()
			rl.mu.Unlock()
			c.Next()
			return
		}

		if entry.count >= rl.rate {
			rl.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": rl.window.Seconds(),
			})
			c.Abort()
			return
		}

		entry.count++
		rl.mu.Unlock()

		c.Next()
	}
}

// cleanupStale drops IPs that have been quiet for two windows.
func (rl *RateLimiter) cleanupStale() {
	ticker := time.NewTicker(1 * time.Minute)
	for {
		<-ticker.C
		rl.mu.Lock()
		for ip, entry := range rl.clients {
			if time.Since(entry.windowStart) > rl.window*2 {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// CreateRateLimiters builds the per-endpoint buckets. Batch is tightest
// because one batch fans out into many browser sessions.
func CreateRateLimiters() map[string]*RateLimiter {
	return map[string]*RateLimiter{
		"apply":   NewRateLimiter(10, 1*time.Minute),
		"batch":   NewRateLimiter(2, 1*time.Minute),
		"general": NewRateLimiter(60, 1*time.Minute),
	}
}
