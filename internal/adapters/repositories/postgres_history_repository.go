package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shipping-decision-service/internal/domain"
)

// Postgres-backed implementation of the HistoryRepository port.
// The delivery_history table is an append-only log of completed
// deliveries written by the fulfillment side of the application.
type PostgresHistoryRepository struct{ DB *sql.DB }

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{DB: db}
}

// Return all recorded deliveries for a (carrier, route) pair.
func (r *PostgresHistoryRepository) ListByCarrierRoute(
	ctx context.Context,
	carrier string,
	route domain.Route,
) ([]domain.DeliveryHistory, error) {
	if r.DB == nil {
		return nil, errors.New("history repository: DB is nil")
	}

	query := `
	SELECT actual_days
	FROM delivery_history
	WHERE carrier = $1
		AND origin_country = $2
		AND origin_postal = $3
		AND destination_country = $4
		AND destination_postal = $5
	ORDER BY recorded_at;
	`
	rows, err := r.DB.QueryContext(ctx, query,
		carrier,
		route.Origin.CountryCode, route.Origin.PostalCode,
		route.Destination.CountryCode, route.Destination.PostalCode,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: query delivery_history table: %w", err)
	}
	defer rows.Close()

	records := make([]domain.DeliveryHistory, 0, 64)
	for rows.Next() {
		var days float64
		if err := rows.Scan(&days); err != nil {
			return nil, fmt.Errorf("list history: scan row: %w", err)
		}
		records = append(records, domain.DeliveryHistory{
			Carrier:    carrier,
			Route:      route,
			ActualDays: days,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: row iteration: %w", err)
	}

	return records, nil
}
