package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientInfo struct {
	limiter *rate.Limiter
	last    time.Time
}

// localLimiter is a per-IP token bucket kept in process memory.
type localLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	every   rate.Limit
	burst   int
	window  time.Duration
}

func newLocalLimiter(maxRequests int, window time.Duration) *localLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &localLimiter{
		clients: make(map[string]*clientInfo),
		every:   rate.Every(window / time.Duration(maxRequests)),
		burst:   maxRequests,
		window:  window,
	}
}

func (l *localLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	ci, ok := l.clients[ip]
	if !ok {
		ci = &clientInfo{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[ip] = ci
	}
	ci.last = now

	if len(l.clients) > 10000 {
		for k, v := range l.clients {
			if now.Sub(v.last) > l.window {
				delete(l.clients, k)
			}
		}
	}
	return ci.limiter.Allow()
}

// SimpleRateLimit blocks clients that send more than maxRequests per window
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	l := newLocalLimiter(maxRequests, window)
	return func(c *gin.Context) {
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		if !l.allow(c.ClientIP()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			abortRateLimited(c)
			return
		}
		c.Next()
	}
}

func abortRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{"kind": "rate_limited", "message": "rate limit exceeded"}})
}
