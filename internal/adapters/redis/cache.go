package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// GetEvent returns the cached event payload, or nil on a miss.
func (c *Cache) GetEvent(ctx context.Context, eventID string) ([]byte, error) {
	val, err := c.client.Get(ctx, "event:"+eventID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *Cache) SetEvent(ctx context.Context, eventID string, payload []byte, ttl time.Duration) error {
	return c.client.Set(ctx, "event:"+eventID, payload, ttl).Err()
}

// InvalidateEvent drops the cached copy after a mutation, including the seat
// decrement done by purchases.
func (c *Cache) InvalidateEvent(ctx context.Context, eventID string) error {
	return c.client.Del(ctx, "event:"+eventID).Err()
}
