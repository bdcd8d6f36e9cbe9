package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is a small TTL cache for AI completions keyed by prompt. Keeps
// repeated analyze runs for the same unchanged snapshot from burning
// model tokens.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

func New(maxSizeMB int, ttl time.Duration) (*Cache, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     int64(maxSizeMB) * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Get(key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	v, ok := c.client.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *Cache) Set(key, value string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.SetWithTTL(key, value, int64(len(value)), c.ttl)
}

// Wait flushes pending writes; tests call it so a Set is visible to the
// next Get.
func (c *Cache) Wait() {
	if c != nil && c.client != nil {
		c.client.Wait()
	}
}
