package gatewayserver

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterRegistry keeps one token bucket per user ID.
type limiterRegistry struct {
	limit rate.Limit
	burst int

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// newLimiterRegistry returns nil when perSecond is not positive, which
// disables limiting.
func newLimiterRegistry(perSecond float64, burst int) *limiterRegistry {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &limiterRegistry{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether user may run one more request now.
func (r *limiterRegistry) Allow(user string) bool {
	if r == nil {
		return true
	}
	return r.getOrCreate(user).Allow()
}

func (r *limiterRegistry) getOrCreate(user string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[user]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := r.limiters[user]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(r.limit, r.burst)
	r.limiters[user] = limiter
	return limiter
}
