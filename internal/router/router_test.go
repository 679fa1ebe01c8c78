package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"kalem/internal/middleware"
	"kalem/internal/session"
)

// testRouter builds a router with zero-value handler groups. Requests
// must be stopped by the middleware chain before any handler runs, so
// these tests exercise the route guards without backing services.
func testRouter(t *testing.T) http.Handler {
	t.Helper()

	sessions := session.NewStore(redis.NewClient(&redis.Options{Addr: "localhost:0"}), false)
	loginLimiter := middleware.NewRateLimiter(100, time.Minute)
	commentLimiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(func() {
		loginLimiter.Stop()
		commentLimiter.Stop()
	})

	return New(sessions, false, Handlers{}, loginLimiter, commentLimiter)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/users"},
		{http.MethodPost, "/categories"},
		{http.MethodPost, "/books"},
		{http.MethodPatch, "/articles/some-id"},
		{http.MethodPost, "/papers/some-id/publish"},
		{http.MethodDelete, "/creative-works/some-id"},
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/uploads/pdf"},
		{http.MethodGet, "/comments/pending-count"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/no-such-resource", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") == "" {
		t.Error("missing X-Frame-Options header")
	}
}
