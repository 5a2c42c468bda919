package match

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// entryText is the precomputed normalized form of one entry: the
// canonical question (scored against) and the short answer (carried
// on suggestions for display).
type entryText struct {
	norm       string
	answerNorm string
	tokens     []string
}

// TokenCache memoizes normalized token sets keyed by content hash.
// The hash covers exactly the fields the engine normalizes, so a hit
// can never serve stale text; the cache is purely an optimization and
// results are identical with or without it.
type TokenCache struct {
	cache *gocache.Cache
}

// NewTokenCache creates a token cache with the given TTL.
func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (c *TokenCache) get(contentHash string) (entryText, bool) {
	if c == nil {
		return entryText{}, false
	}
	if v, found := c.cache.Get(contentHash); found {
		return v.(entryText), true
	}
	return entryText{}, false
}

func (c *TokenCache) set(contentHash string, t entryText) {
	if c == nil {
		return
	}
	c.cache.Set(contentHash, t, gocache.DefaultExpiration)
}
