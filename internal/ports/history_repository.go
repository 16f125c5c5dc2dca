package ports

import (
	"context"

	"shipping-decision-service/internal/domain"
)

// Port: a boundary for the external delivery-history data store.
// Records are append-only facts; the engine only reads them.
type HistoryRepository interface {
	// Return all recorded deliveries for a (carrier, route) pair.
	ListByCarrierRoute(ctx context.Context, carrier string, route domain.Route) ([]domain.DeliveryHistory, error)
}
