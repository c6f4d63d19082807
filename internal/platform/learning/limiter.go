package learning

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterCache hands out one token bucket per identity, so concurrent
// connections for the same account share a request budget.
type limiterCache struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLimiterCache(perSecond float64, burst int) *limiterCache {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &limiterCache{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (c *limiterCache) get(identity string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[identity]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[identity] = l
	}
	return l
}
