package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/waweruedwin8/alx-travel-app/pkg/circuitbreaker"
)

// Cache is a read-through Redis cache for listing detail responses. Calls go
// through a circuit breaker so a dead Redis degrades to plain database reads
// instead of adding a timeout to every request. A nil *Cache is valid and
// disables caching.
type Cache struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	ttl    time.Duration
}

// New connects to Redis at addr, or returns nil (caching off) when addr is
// empty.
func New(addr string) *Cache {
	if addr == "" {
		log.Println("REDIS_ADDR not set, listing cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	log.Println("Listing cache initialized with address:", addr)
	return &Cache{
		client: client,
		cb:     circuitbreaker.New(5, 30*time.Second),
		ttl:    60 * time.Second,
	}
}

func listingKey(uid string) string {
	return "listing:" + uid
}

func (c *Cache) GetListing(ctx context.Context, uid string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var payload []byte
	err := c.cb.Execute(func() error {
		var err error
		payload, err = c.client.Get(ctx, listingKey(uid)).Bytes()
		if err == redis.Nil {
			payload = nil
			return nil
		}
		return err
	})
	if err != nil || payload == nil {
		return nil, false
	}
	return payload, true
}

func (c *Cache) SetListing(ctx context.Context, uid string, payload []byte) {
	if c == nil {
		return
	}
	c.cb.Execute(func() error {
		return c.client.Set(ctx, listingKey(uid), payload, c.ttl).Err()
	})
}

// InvalidateListing drops the cached detail; called on every write that
// touches the listing, including review and image writes.
func (c *Cache) InvalidateListing(ctx context.Context, uid string) {
	if c == nil {
		return
	}
	c.cb.Execute(func() error {
		return c.client.Del(ctx, listingKey(uid)).Err()
	})
}
