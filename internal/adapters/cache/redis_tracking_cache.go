package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"shipping-decision-service/internal/domain"
)

// RedisTrackingCache is a short-TTL cache for tracking lookups, keyed
// by (carrier, tracking number).
type RedisTrackingCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTrackingCache(client *redis.Client, ttl time.Duration) *RedisTrackingCache {
	return &RedisTrackingCache{Client: client, TTL: ttl}
}

func trackingKey(carrier, trackingNumber string) string {
	return "tracking:" + strings.ToLower(carrier) + ":" + trackingNumber
}

// Get returns the cached tracking state, or nil on a miss.
func (c *RedisTrackingCache) Get(ctx context.Context, carrier, trackingNumber string) (*domain.TrackingInfo, error) {
	if c.Client == nil {
		return nil, errors.New("tracking cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, trackingKey(carrier, trackingNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tracking cache: %w", err)
	}

	var info domain.TrackingInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("get tracking cache: decode entry: %w", err)
	}
	return &info, nil
}

// Put stores tracking state for the configured TTL.
func (c *RedisTrackingCache) Put(ctx context.Context, info domain.TrackingInfo) error {
	if c.Client == nil {
		return errors.New("tracking cache: client is nil")
	}

	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("put tracking cache: encode entry: %w", err)
	}

	if err := c.Client.Set(ctx, trackingKey(info.Carrier, info.TrackingNumber), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put tracking cache: %w", err)
	}
	return nil
}
