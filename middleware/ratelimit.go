package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles complaint submissions per citizen. Limiters are
// kept in memory, so restarts reset the budget; that is acceptable for
// abuse damping, not billing.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
	enabled  bool
}

// NewRateLimiter creates a per-citizen limiter allowing perHour submissions
// with the given burst. perHour <= 0 disables limiting.
func NewRateLimiter(perHour, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Limit(float64(perHour) / 3600.0),
		burst:    burst,
		enabled:  perHour > 0,
	}
}

func (rl *RateLimiter) limiterFor(userID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[userID] = limiter
	}
	return limiter
}

// Limit rejects the request with 429 when the caller is over budget.
// Must run after RequireAuth so the identity is in context.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}
		identity, ok := IdentityFromContext(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
			return
		}
		if !rl.limiterFor(identity.UserID).Allow() {
			respondWithError(w, http.StatusTooManyRequests, "Rate limited", "Too many complaints submitted, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
