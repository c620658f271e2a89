package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleClientTTL is how long a client's bucket survives without requests.
const idleClientTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a token bucket per client: the authenticated API key when
// there is one, the client IP otherwise. Idle buckets are swept lazily.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*client)
	lastSweep := time.Now()

	return func(c *gin.Context) {
		id := "ip:" + c.ClientIP()
		if key := c.GetString(ContextKeyAPIKey); key != "" {
			id = "key:" + key
		}
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > idleClientTTL {
			evictIdle(clients, now)
			lastSweep = now
		}
		cl, ok := clients[id]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[id] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func evictIdle(clients map[string]*client, now time.Time) {
	for id, cl := range clients {
		if now.Sub(cl.lastSeen) > idleClientTTL {
			delete(clients, id)
		}
	}
}
