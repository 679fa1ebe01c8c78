package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"kalem/internal/session"
)

const (
	// CSRFCookieName is the cookie holding the CSRF token.
	CSRFCookieName = "kalem_csrf"
	// CSRFHeaderName is the request header the client must echo the token in.
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF implements double-submit cookie CSRF protection for session-bearing
// state-changing requests. Requests without a session cookie are left alone
// since they cannot ride an authenticated session. Safe methods always pass
// and get a token cookie issued if one is missing.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				ensureCSRFCookie(w, r, secure)
				next.ServeHTTP(w, r)
				return
			}

			// Only requests carrying a session cookie can be forged.
			if _, err := r.Cookie(session.CookieName); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(CSRFCookieName)
			if err != nil || cookie.Value == "" {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "missing CSRF token")
				return
			}

			header := r.Header.Get(CSRFHeaderName)
			if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, secure bool) {
	if c, err := r.Cookie(CSRFCookieName); err == nil && c.Value != "" {
		return
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return
	}
	token := base64.URLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})
}
