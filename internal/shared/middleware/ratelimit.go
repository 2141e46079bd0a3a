package middleware

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests with 429 once limiter runs out of tokens.
// A nil limiter disables the check.
func RateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			retry := 1
			if l := float64(limiter.Limit()); l > 0 {
				retry = max(1, int(math.Round(1/l)))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "Too many calculations, slow down", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
