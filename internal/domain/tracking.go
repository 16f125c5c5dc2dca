package domain

import "time"

// Canonical shipment status shared by all carriers. Adapters map each
// carrier's own vocabulary onto this set so downstream consumers never
// branch on carrier-specific codes.
type TrackingStatus string

const (
	StatusPending        TrackingStatus = "PENDING"
	StatusInTransit      TrackingStatus = "IN_TRANSIT"
	StatusOutForDelivery TrackingStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      TrackingStatus = "DELIVERED"
	StatusException      TrackingStatus = "EXCEPTION"
	StatusReturned       TrackingStatus = "RETURNED"
	StatusUnknown        TrackingStatus = "UNKNOWN"
)

// A single event in a shipment's tracking history.
type TrackingEvent struct {
	Timestamp   time.Time
	Status      TrackingStatus
	Location    string
	Description string
}

// Canonicalized tracking state for one shipment. Events are ordered
// oldest first.
type TrackingInfo struct {
	Carrier          string
	TrackingNumber   string
	Status           TrackingStatus
	EstimatedArrival *time.Time
	LastUpdated      time.Time
	CurrentLocation  string
	Events           []TrackingEvent
}

// A (carrier, tracking number) pair identifying one shipment in a
// batch tracking request.
type TrackingRef struct {
	Carrier        string
	TrackingNumber string
}

// Per-item outcome of a batch tracking call. Exactly one of Info or
// Err is meaningful.
type TrackingResult struct {
	Ref  TrackingRef
	Info *TrackingInfo
	Err  error
}
