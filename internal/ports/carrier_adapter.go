package ports

import (
	"context"

	"shipping-decision-service/internal/domain"
)

// Port: a boundary for one third-party shipping carrier.
// Implementations own their authentication and wire formats and must
// not leak carrier-specific types or status vocabularies past this
// interface. Failures are returned as domain.CarrierError values.
type CarrierAdapter interface {
	// Name returns the canonical carrier name (e.g. "DHL").
	Name() string

	// GetQuote returns the carrier's offer for shipping pkg between the
	// two locations.
	GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error)

	// GetTracking returns canonicalized tracking state for a shipment.
	GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error)
}
