// Listing cache integration tests. Skipped when Valkey is unavailable.
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

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
		keys, _ := client.Keys(ctx, "listing:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestListingCacheRoundtrip(t *testing.T) {
	lc := NewListingCache(testClient(t), time.Minute)
	ctx := context.Background()

	key := Key("book", "page=1&limit=20")
	if _, ok := lc.Get(ctx, key); ok {
		t.Fatal("unexpected cache hit before set")
	}

	body := []byte(`{"data":[],"total":0,"page":1,"limit":20}`)
	lc.Set(ctx, key, body)

	got, ok := lc.Get(ctx, key)
	if !ok {
		t.Fatal("cache miss after set")
	}
	if string(got) != string(body) {
		t.Errorf("cached body = %s, want %s", got, body)
	}
}

func TestListingCacheInvalidateKind(t *testing.T) {
	lc := NewListingCache(testClient(t), time.Minute)
	ctx := context.Background()

	bookKey := Key("book", "page=1")
	otherBookKey := Key("book", "page=2&featured=true")
	articleKey := Key("article", "page=1")

	lc.Set(ctx, bookKey, []byte("b1"))
	lc.Set(ctx, otherBookKey, []byte("b2"))
	lc.Set(ctx, articleKey, []byte("a1"))

	lc.InvalidateKind(ctx, "book")

	if _, ok := lc.Get(ctx, bookKey); ok {
		t.Error("book listing survived invalidation")
	}
	if _, ok := lc.Get(ctx, otherBookKey); ok {
		t.Error("second book listing survived invalidation")
	}
	if _, ok := lc.Get(ctx, articleKey); !ok {
		t.Error("article listing was invalidated with books")
	}
}

func TestKeyFormat(t *testing.T) {
	if got := Key("paper", "q=test"); got != "paper?q=test" {
		t.Errorf("Key() = %q, want paper?q=test", got)
	}
}
