package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the delivery history schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createHistoryQuery := `
	CREATE TABLE IF NOT EXISTS delivery_history (
		id BIGSERIAL PRIMARY KEY,
		carrier TEXT NOT NULL,
		origin_country TEXT NOT NULL,
		origin_postal TEXT NOT NULL,
		destination_country TEXT NOT NULL,
		destination_postal TEXT NOT NULL,
		actual_days DOUBLE PRECISION NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_delivery_history_carrier_route
	ON delivery_history(carrier, origin_country, origin_postal, destination_country, destination_postal);
	`

	statements := []string{createHistoryQuery, createIndexQuery}
	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type HistorySeed struct {
	Carrier            string  `json:"carrier"`
	OriginCountry      string  `json:"origin_country"`
	OriginPostal       string  `json:"origin_postal"`
	DestinationCountry string  `json:"destination_country"`
	DestinationPostal  string  `json:"destination_postal"`
	ActualDays         float64 `json:"actual_days"`
}

// Populate the database with delivery history from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed history: read %q: %w", jsonPath, err)
	}

	var data []HistorySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed history: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.Carrier) == "" {
			return fmt.Errorf("seed history: item at index %d: carrier cannot be empty", i+1)
		}
		if item.ActualDays <= 0 {
			return fmt.Errorf("seed history: item at index %d: actual_days must be > 0, got %v", i+1, item.ActualDays)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed history: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO delivery_history (
		carrier,
		origin_country,
		origin_postal,
		destination_country,
		destination_postal,
		actual_days
	)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed history: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range data {
		if _, err := stmt.Exec(
			h.Carrier,
			strings.ToUpper(h.OriginCountry), h.OriginPostal,
			strings.ToUpper(h.DestinationCountry), h.DestinationPostal,
			h.ActualDays,
		); err != nil {
			return fmt.Errorf("seed history: insert carrier=%q: %w", h.Carrier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed history: commit tx: %w", err)
	}

	return nil
}
