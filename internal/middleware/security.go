package middleware

import "net/http"

var baselineHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "SAMEORIGIN",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
}

// SecureHeaders sets the baseline browser protection headers on every
// response before the handler runs, so error paths carry them too.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range baselineHeaders {
			w.Header().Set(name, value)
		}
		next.ServeHTTP(w, r)
	})
}
