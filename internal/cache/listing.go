// listing.go provides a Valkey-backed cache for public listing responses.
// Public list endpoints serve identical JSON to every anonymous visitor,
// so the serialized response is stored in Valkey and subsequent requests
// skip the DB queries entirely. Every admin write to a publication kind
// invalidates that kind's prefix. Detail responses are never cached,
// since each public detail read must increment the view counter.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listingKeyPrefix is the Valkey key prefix for cached listings.
	listingKeyPrefix = "listing:"

	// DefaultListingTTL is how long a cached listing stays valid without
	// an explicit invalidation.
	DefaultListingTTL = time.Minute
)

// ListingCache manages public listing response caching in Valkey.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a new listing cache backed by the given Valkey client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl == 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Key builds the cache key for a kind and the request's raw query string.
func Key(kind, rawQuery string) string {
	return fmt.Sprintf("%s?%s", kind, rawQuery)
}

// Get retrieves a cached response body. Returns false on miss.
func (lc *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := lc.client.Get(ctx, listingKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("listing cache hit", "key", key)
	return val, true
}

// Set stores a response body for a listing key with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, key string, body []byte) {
	if err := lc.client.Set(ctx, listingKeyPrefix+key, body, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "key", key, "error", err)
	}
}

// InvalidateKind removes all cached listings for a publication kind by
// scanning for its prefix. Called after every admin write to that kind.
func (lc *ListingCache) InvalidateKind(ctx context.Context, kind string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listingKeyPrefix+kind+"?*", 100).Result()
		if err != nil {
			slog.Warn("listing cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("listing cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("listing cache invalidated", "kind", kind, "deleted", deleted)
	}
}
