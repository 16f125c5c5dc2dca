// Package cache contains Redis-backed TTL caches shielding carrier
// APIs from repeated identical requests. Entries expire server-side
// via Redis TTLs; callers treat every cache as advisory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shipping-decision-service/internal/domain"
)

// RedisQuoteCache is a short-TTL cache for carrier quotes.
type RedisQuoteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisQuoteCache(client *redis.Client, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{Client: client, TTL: ttl}
}

// Get returns the cached quote for the key, or nil on a miss.
func (c *RedisQuoteCache) Get(ctx context.Context, key string) (*domain.CarrierQuote, error) {
	if c.Client == nil {
		return nil, errors.New("quote cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, "quote:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quote cache: %w", err)
	}

	var quote domain.CarrierQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("get quote cache: decode entry: %w", err)
	}
	return &quote, nil
}

// Put stores a quote under the key for the configured TTL.
func (c *RedisQuoteCache) Put(ctx context.Context, key string, quote domain.CarrierQuote) error {
	if c.Client == nil {
		return errors.New("quote cache: client is nil")
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("put quote cache: encode entry: %w", err)
	}

	if err := c.Client.Set(ctx, "quote:"+key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put quote cache: %w", err)
	}
	return nil
}
