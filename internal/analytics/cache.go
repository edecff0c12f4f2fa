package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type cacheContextKey struct{}

type cacheKey struct {
	fn     string
	userID string
	since  int64
	extra  string
}

func newCacheKey(fn, userID string, since *time.Time, extra ...any) cacheKey {
	key := cacheKey{fn: fn, userID: userID, since: -1}
	if since != nil {
		key.since = since.UnixNano()
	}
	if len(extra) > 0 {
		key.extra = fmt.Sprint(extra...)
	}
	return key
}

// RequestCache memoizes aggregator results for the lifetime of one incoming request.
// It is created per request by the caller and must never be shared between requests.
type RequestCache struct {
	mu      sync.Mutex
	entries map[cacheKey]any
}

func NewRequestCache() *RequestCache {
	return &RequestCache{entries: make(map[cacheKey]any)}
}

func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RequestCache) get(key cacheKey) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *RequestCache) set(key cacheKey, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func WithRequestCache(ctx context.Context, c *RequestCache) context.Context {
	return context.WithValue(ctx, cacheContextKey{}, c)
}

func RequestCacheFrom(ctx context.Context) *RequestCache {
	c, _ := ctx.Value(cacheContextKey{}).(*RequestCache)
	return c
}

// memo computes through the request cache when one is attached. Errors are not cached.
func memo[T any](ctx context.Context, key cacheKey, compute func(context.Context) (T, error)) (T, error) {
	c := RequestCacheFrom(ctx)
	if c == nil {
		return compute(ctx)
	}
	if v, ok := c.get(key); ok {
		return v.(T), nil
	}
	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	c.set(key, v)
	return v, nil
}
