package server

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds each request's context by d. Unlike chi's Timeout it
// writes nothing itself: an operation that runs out of time still answers
// 200 with a failed envelope. Zero or negative disables it.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
