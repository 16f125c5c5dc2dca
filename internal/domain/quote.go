package domain

import "fmt"

// Relative importance of cost, speed and reliability when choosing a carrier.
// The weights need not sum to 1; the scoring engine normalizes them.
// All-zero weights are rejected where a preference is required.
type ShippingPriorities struct {
	Cost        float64
	Speed       float64
	Reliability float64
}

// Validate checks that weights are non-negative and not all zero.
func (p ShippingPriorities) Validate() error {
	if p.Cost < 0 || p.Speed < 0 || p.Reliability < 0 {
		return fmt.Errorf("%w: priority weights must be non-negative", ErrInvalidInput)
	}
	if p.Cost == 0 && p.Speed == 0 && p.Reliability == 0 {
		return fmt.Errorf("%w: at least one priority weight must be positive", ErrInvalidInput)
	}
	return nil
}

// A single carrier's offer for one shipment. Quotes are request-scoped
// and never persisted; they are only comparable within one aggregation
// batch.
type CarrierQuote struct {
	Carrier     string
	Cost        float64
	Currency    string
	TransitDays int
	Trackable   bool
	Reliability float64
}

// The chosen carrier for a shipment, produced by the scoring engine.
// EstimatedDeliveryDays starts as the quoted transit time and may be
// refined by the delivery predictor when route history exists.
type ShippingRecommendation struct {
	Carrier               string
	Cost                  float64
	Currency              string
	EstimatedDeliveryDays float64
	Reliability           float64
	Score                 float64
}
