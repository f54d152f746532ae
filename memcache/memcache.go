package memcache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type Client struct {
	c *cache.Cache
}

type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig keeps entries for ten minutes.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 20 * time.Minute,
	}
}

func New(cfg Config) *Client {
	return &Client{
		c: cache.New(cfg.DefaultTTL, cfg.CleanupInterval),
	}
}

func (mc *Client) Get(key string) (interface{}, bool) {
	return mc.c.Get(key)
}

// GetOrLoad returns the cached value for key, calling load and caching its
// result on a miss. Failed loads are not cached.
func (mc *Client) GetOrLoad(key string, load func() (interface{}, error)) (interface{}, error) {
	if val, ok := mc.c.Get(key); ok {
		return val, nil
	}
	val, err := load()
	if err != nil {
		return nil, err
	}
	mc.c.Set(key, val, cache.DefaultExpiration)
	return val, nil
}

func (mc *Client) Delete(key string) {
	mc.c.Delete(key)
}
