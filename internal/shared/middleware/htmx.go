package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const htmxKey contextKey = "htmx"

// HTMXRequest is what htmx tells us about a request through its headers.
type HTMXRequest struct {
	Target  string // id of the element being swapped
	Trigger string // id of the element that fired the request
	Boosted bool
}

// HTMX stores the htmx headers of a request in its context.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("HX-Request") != "true" {
			next.ServeHTTP(w, r)
			return
		}
		info := &HTMXRequest{
			Target:  r.Header.Get("HX-Target"),
			Trigger: r.Header.Get("HX-Trigger"),
			Boosted: r.Header.Get("HX-Boosted") == "true",
		}
		ctx := context.WithValue(r.Context(), htmxKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HTMXInfo returns the htmx details of r, or nil for a plain request.
func HTMXInfo(r *http.Request) *HTMXRequest {
	info, _ := r.Context().Value(htmxKey).(*HTMXRequest)
	return info
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return HTMXInfo(r) != nil
}
