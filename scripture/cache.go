package scripture

import (
	"context"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultCacheSize is the number of resolved passages a CachedResolver keeps.
const DefaultCacheSize = 1024

// CachedResolver memoizes successful lookups of an underlying Resolver.
// Failures are not cached, so a transient outage does not pin a reference
// as not found.
type CachedResolver struct {
	next  Resolver
	cache *ristretto.Cache[string, string]
}

var _ Resolver = (*CachedResolver)(nil)

// NewCachedResolver wraps next with an in-memory cache holding up to size
// passages. A non-positive size uses DefaultCacheSize.
func NewCachedResolver(next Resolver, size int) (*CachedResolver, error) {
	if next == nil {
		return nil, ErrResolverRequired
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedResolver{next: next, cache: cache}, nil
}

// Resolve returns the cached text for ref or resolves and caches it.
func (c *CachedResolver) Resolve(ctx context.Context, ref Reference) (string, error) {
	key := strings.ToLower(ref.String())
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}
	text, err := c.next.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, text, 1)
	c.cache.Wait()
	return text, nil
}

// Close releases the cache.
func (c *CachedResolver) Close() {
	c.cache.Close()
}
