package services

import (
	"fmt"

	"shipping-decision-service/internal/domain"
)

// SelectBest picks the highest-scoring quote for the given priorities.
//
// Cost and transit days are normalized into [0,1] relative to the batch
// maximum, so scores are only meaningful within one aggregation call,
// never across calls. Reliability is already [0,1] and used as-is.
// All-zero weights fall back to equal weights (1/3 each). Ties break by
// lowest cost, then carrier name, for full determinism.
func SelectBest(quotes []domain.CarrierQuote, priorities domain.ShippingPriorities) (domain.ShippingRecommendation, error) {
	if len(quotes) == 0 {
		return domain.ShippingRecommendation{}, fmt.Errorf("select best: %w", domain.ErrNoCarriersAvailable)
	}

	if priorities.Cost < 0 || priorities.Speed < 0 || priorities.Reliability < 0 {
		return domain.ShippingRecommendation{}, fmt.Errorf(
			"select best: %w: priority weights must be non-negative",
			domain.ErrInvalidInput,
		)
	}

	wCost, wSpeed, wReliability := normalizeWeights(priorities)

	var (
		minCost, maxCost = quotes[0].Cost, quotes[0].Cost
		minDays, maxDays = quotes[0].TransitDays, quotes[0].TransitDays
	)
	for _, q := range quotes[1:] {
		minCost = min(minCost, q.Cost)
		maxCost = max(maxCost, q.Cost)
		minDays = min(minDays, q.TransitDays)
		maxDays = max(maxDays, q.TransitDays)
	}

	var (
		best      domain.CarrierQuote
		bestScore = -1.0
	)
	for _, q := range quotes {
		normCost := normalizeDimension(q.Cost, minCost, maxCost)
		normSpeed := normalizeDimension(float64(q.TransitDays), float64(minDays), float64(maxDays))

		score := wCost*normCost + wSpeed*normSpeed + wReliability*q.Reliability

		if score > bestScore ||
			(score == bestScore && q.Cost < best.Cost) ||
			(score == bestScore && q.Cost == best.Cost && q.Carrier < best.Carrier) {
			best = q
			bestScore = score
		}
	}

	return domain.ShippingRecommendation{
		Carrier:               best.Carrier,
		Cost:                  best.Cost,
		Currency:              best.Currency,
		EstimatedDeliveryDays: float64(best.TransitDays),
		Reliability:           best.Reliability,
		Score:                 bestScore,
	}, nil
}

// normalizeWeights scales priorities so they sum to 1. All-zero weights
// mean the caller has no preference: treat as equal weights.
func normalizeWeights(p domain.ShippingPriorities) (cost, speed, reliability float64) {
	sum := p.Cost + p.Speed + p.Reliability
	if sum == 0 {
		return 1.0 / 3, 1.0 / 3, 1.0 / 3
	}
	return p.Cost / sum, p.Speed / sum, p.Reliability / sum
}

// normalizeDimension maps a lower-is-better value into [0,1] relative to
// the batch maximum. When every quote shares the same value the
// dimension carries no signal and all quotes score 1.
func normalizeDimension(v, minV, maxV float64) float64 {
	if minV == maxV || maxV == 0 {
		return 1
	}
	return 1 - v/maxV
}
