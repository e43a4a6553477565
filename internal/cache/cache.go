package cache

import (
	"context"
	"log"
	"net/url"
)

// Store is the shared key-value medium backing the response cache. The
// Redis implementation lives in pkg/rediscache; tests substitute an
// in-memory one. Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
}

// Key derives a deterministic cache key from the request path and its
// query parameters. url.Values.Encode sorts by parameter name, so every
// distinct filter/order/page combination gets its own key and identical
// requests always collide on the same one.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// ResponseCache memoizes list-endpoint payloads in a shared store for a
// fixed TTL. It is best-effort: any store failure falls open to direct
// computation, never failing the request.
type ResponseCache struct {
	store Store
}

// NewResponseCache creates a ResponseCache over the given store.
func NewResponseCache(store Store) *ResponseCache {
	return &ResponseCache{store: store}
}

// GetOrCompute returns the cached payload for key if present, or invokes
// compute exactly once, stores the result with the given TTL and returns
// it. The second return value reports whether this was a cache hit.
func (c *ResponseCache) GetOrCompute(ctx context.Context, key string, ttlSeconds int, compute func() ([]byte, error)) ([]byte, bool, error) {
	if c.store != nil {
		cached, err := c.store.Get(ctx, key)
		if err != nil {
			log.Printf("cache get failed for %q, falling back to compute: %v", key, err)
		} else if cached != nil {
			return cached, true, nil
		}
	}

	payload, err := compute()
	if err != nil {
		return nil, false, err
	}

	if c.store != nil {
		if err := c.store.Set(ctx, key, payload, ttlSeconds); err != nil {
			log.Printf("cache set failed for %q: %v", key, err)
		}
	}
	return payload, false, nil
}
