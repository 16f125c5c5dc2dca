package services

import (
	"context"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/ports"
)

const (
	// Confidence attached to predictions made without route history.
	fallbackConfidence = 0.5

	// Historical predictions never claim more confidence than this.
	maxConfidence = 0.95

	// Used when neither history nor a quoted transit time is available.
	defaultTransitDays = 5.0
)

// DeliveryPredictor estimates delivery time from historical performance
// of a carrier on a route. Prediction is advisory: it always returns a
// value, never an error. History may be nil, in which case every
// prediction is a quoted-time fallback.
type DeliveryPredictor struct {
	History ports.HistoryRepository
	Logger  *zap.Logger
}

// Predict estimates how long the carrier will take on the route.
// quotedTransitDays is the carrier's own estimate and is used as the
// fallback when no exact-route history exists; pass 0 when no quote is
// at hand.
func (p *DeliveryPredictor) Predict(
	ctx context.Context,
	carrier string,
	route domain.Route,
	quotedTransitDays float64,
) domain.DeliveryPrediction {
	history := p.loadHistory(ctx, carrier, route)

	durations := make([]float64, 0, len(history))
	for _, h := range history {
		if h.ActualDays > 0 {
			durations = append(durations, h.ActualDays)
		}
	}

	if len(durations) == 0 {
		days := quotedTransitDays
		if days <= 0 {
			days = defaultTransitDays
		}
		return domain.DeliveryPrediction{EstimatedDays: days, Confidence: fallbackConfidence}
	}

	return estimateFromDurations(durations)
}

func (p *DeliveryPredictor) loadHistory(ctx context.Context, carrier string, route domain.Route) []domain.DeliveryHistory {
	if p.History == nil {
		return nil
	}

	history, err := p.History.ListByCarrierRoute(ctx, carrier, route)
	if err != nil {
		// History lookups degrade to the quoted-time fallback.
		p.Logger.Warn("history lookup failed",
			zap.String("carrier", carrier),
			zap.String("route", route.Key()),
			zap.Error(err),
		)
		return nil
	}
	return history
}

// estimateFromDurations computes a robust central tendency of observed
// durations plus a confidence value. Confidence grows with sample count
// and shrinks with relative dispersion, capped at maxConfidence.
func estimateFromDurations(durations []float64) domain.DeliveryPrediction {
	data := stats.Float64Data(durations)

	var estimate float64
	var err error
	if len(durations) >= 4 {
		// Tukey's trimean resists outliers (lost or delayed parcels).
		estimate, err = stats.Trimean(data)
	} else {
		estimate, err = stats.Median(data)
	}
	if err != nil {
		return domain.DeliveryPrediction{EstimatedDays: defaultTransitDays, Confidence: fallbackConfidence}
	}

	mean, _ := stats.Mean(data)
	stddev, _ := stats.StandardDeviation(data)

	dispersion := 1.0
	if mean > 0 {
		dispersion = 1 / (1 + stddev/mean)
	}

	n := float64(len(durations))
	confidence := (n / (n + 3)) * dispersion
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return domain.DeliveryPrediction{EstimatedDays: estimate, Confidence: confidence}
}
