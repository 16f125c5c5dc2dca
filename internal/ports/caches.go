package ports

import (
	"context"

	"shipping-decision-service/internal/domain"
)

// Port: a short-TTL cache for carrier quotes, keyed by
// (carrier, route, package fingerprint). Get returns nil on a miss.
// Caches are advisory: callers must tolerate errors and fall through
// to a live carrier call.
type QuoteCache interface {
	Get(ctx context.Context, key string) (*domain.CarrierQuote, error)
	Put(ctx context.Context, key string, quote domain.CarrierQuote) error
}

// Port: a short-TTL cache for tracking lookups, keyed by
// (carrier, tracking number). Get returns nil on a miss.
type TrackingCache interface {
	Get(ctx context.Context, carrier, trackingNumber string) (*domain.TrackingInfo, error)
	Put(ctx context.Context, info domain.TrackingInfo) error
}
