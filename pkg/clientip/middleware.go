package clientip

import "net/http"

// Middleware extracts the client IP once per request and stores it in
// context for downstream consumers (gateway maintenance checks, logs).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := SetIPToContext(r.Context(), GetIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
