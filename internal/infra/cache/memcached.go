package cache

import (
	"github.com/bradfitz/gomemcache/memcache"
)

const tokenKeyPrefix = "pushToken:"

// MemcachedTokenCache caches delivery tokens in front of the pushTokens
// collection. Cache failures degrade to store reads, never to errors.
type MemcachedTokenCache struct {
	client *memcache.Client
	ttl    int32
}

func NewMemcachedTokenCache(client *memcache.Client, ttlSeconds int32) *MemcachedTokenCache {
	return &MemcachedTokenCache{
		client: client,
		ttl:    ttlSeconds,
	}
}

func (c *MemcachedTokenCache) Get(uid string) (string, bool) {
	item, err := c.client.Get(tokenKeyPrefix + uid)
	if err != nil {
		return "", false
	}
	return string(item.Value), true
}

func (c *MemcachedTokenCache) Set(uid, token string) {
	_ = c.client.Set(&memcache.Item{
		Key:        tokenKeyPrefix + uid,
		Value:      []byte(token),
		Expiration: c.ttl,
	})
}

func (c *MemcachedTokenCache) Delete(uid string) {
	// A miss is fine, the entry is gone either way.
	_ = c.client.Delete(tokenKeyPrefix + uid)
}
