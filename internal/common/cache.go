package common

import (
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a small wrapper around an in-process go-cache instance. It is used
// for auth token lookups, not for blog content.
type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

func (c *Cache) Delete(key string) {
	c.Cache.Delete(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

// CacheKeyUserByToken keys a user entry by the sha256 hash of a bearer token.
func CacheKeyUserByToken(hash []byte) string {
	return "user_by_token:" + hex.EncodeToString(hash)
}
