// Session integration tests. Skipped when Valkey is unavailable.
package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testClient returns a Valkey client on DB 15, skipping when unreachable.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

// requestWithCookie builds a request carrying the session cookie from a
// recorded response.
func requestWithCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			req.AddCookie(c)
			return req
		}
	}
	t.Fatal("no session cookie set on response")
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	store := NewStore(testClient(t), false)
	ctx := context.Background()

	data := &Data{
		UserID: uuid.New(),
		Email:  "session-test@example.com",
		Name:   "Session Tester",
		Role:   "admin",
	}

	rec := httptest.NewRecorder()
	id, err := store.Create(ctx, rec, data)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	got, err := store.Get(ctx, requestWithCookie(t, rec))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("session not found after create")
	}
	if got.UserID != data.UserID || got.Email != data.Email {
		t.Error("session data did not roundtrip")
	}
	if !got.IsAdmin() {
		t.Error("admin role lost in roundtrip")
	}

	// Update keeps the same cookie but replaces the payload.
	got.Role = "user"
	if err := store.Update(ctx, requestWithCookie(t, rec), got); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := store.Get(ctx, requestWithCookie(t, rec))
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if updated.IsAdmin() {
		t.Error("role change did not persist")
	}

	// Destroy removes the session and expires the cookie.
	destroyRec := httptest.NewRecorder()
	if err := store.Destroy(ctx, destroyRec, requestWithCookie(t, rec)); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	gone, err := store.Get(ctx, requestWithCookie(t, rec))
	if err != nil {
		t.Fatalf("get after destroy: %v", err)
	}
	if gone != nil {
		t.Error("session survived destroy")
	}
	for _, c := range destroyRec.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge != -1 {
			t.Error("destroy did not expire the cookie")
		}
	}
}

func TestGetWithoutCookie(t *testing.T) {
	store := NewStore(testClient(t), false)

	got, err := store.Get(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("cookie-less request returned a session")
	}
}

func TestDataIsAdmin(t *testing.T) {
	if (&Data{Role: "user"}).IsAdmin() {
		t.Error("user role reported as admin")
	}
	if !(&Data{Role: "admin"}).IsAdmin() {
		t.Error("admin role not recognized")
	}
}
