package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"shipping-decision-service/internal/domain"
)

type memHistoryRepository struct {
	records []domain.DeliveryHistory
	err     error
}

func (r *memHistoryRepository) ListByCarrierRoute(ctx context.Context, carrier string, route domain.Route) ([]domain.DeliveryHistory, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.records, nil
}

func historyOf(days ...float64) []domain.DeliveryHistory {
	records := make([]domain.DeliveryHistory, 0, len(days))
	for _, d := range days {
		records = append(records, domain.DeliveryHistory{Carrier: "DHL", ActualDays: d})
	}
	return records
}

func testRoute() domain.Route {
	return domain.Route{
		Origin:      domain.Location{CountryCode: "IN", PostalCode: "400001"},
		Destination: domain.Location{CountryCode: "IN", PostalCode: "110001"},
	}
}

func TestPredictNoHistoryFallsBackToQuote(t *testing.T) {
	p := &DeliveryPredictor{History: &memHistoryRepository{}, Logger: zap.NewNop()}

	got := p.Predict(context.Background(), "DHL", testRoute(), 3)
	if got.EstimatedDays != 3 {
		t.Fatalf("estimated days = %v, want quoted 3", got.EstimatedDays)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want fallback 0.5", got.Confidence)
	}
}

func TestPredictNoHistoryNoQuote(t *testing.T) {
	p := &DeliveryPredictor{History: nil, Logger: zap.NewNop()}

	got := p.Predict(context.Background(), "DHL", testRoute(), 0)
	if got.EstimatedDays != defaultTransitDays {
		t.Fatalf("estimated days = %v, want default %v", got.EstimatedDays, defaultTransitDays)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want fallback 0.5", got.Confidence)
	}
}

func TestPredictRepositoryErrorDegrades(t *testing.T) {
	p := &DeliveryPredictor{
		History: &memHistoryRepository{err: errors.New("connection refused")},
		Logger:  zap.NewNop(),
	}

	got := p.Predict(context.Background(), "DHL", testRoute(), 4)
	if got.EstimatedDays != 4 || got.Confidence != 0.5 {
		t.Fatalf("prediction = %+v, want quoted fallback", got)
	}
}

func TestPredictUniformHistory(t *testing.T) {
	p := &DeliveryPredictor{
		History: &memHistoryRepository{records: historyOf(3, 3, 3, 3, 3)},
		Logger:  zap.NewNop(),
	}

	got := p.Predict(context.Background(), "DHL", testRoute(), 7)
	if got.EstimatedDays != 3 {
		t.Fatalf("estimated days = %v, want 3", got.EstimatedDays)
	}

	// Five identical samples: confidence = 5/8 with zero dispersion.
	want := 5.0 / 8
	if math.Abs(got.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got.Confidence, want)
	}
}

func TestPredictSmallSampleUsesMedian(t *testing.T) {
	p := &DeliveryPredictor{
		History: &memHistoryRepository{records: historyOf(2, 4)},
		Logger:  zap.NewNop(),
	}

	got := p.Predict(context.Background(), "DHL", testRoute(), 0)
	if got.EstimatedDays != 3 {
		t.Fatalf("estimated days = %v, want median 3", got.EstimatedDays)
	}
}

func TestPredictConfidenceGrowsWithSamples(t *testing.T) {
	small := &DeliveryPredictor{
		History: &memHistoryRepository{records: historyOf(3, 3)},
		Logger:  zap.NewNop(),
	}
	large := &DeliveryPredictor{
		History: &memHistoryRepository{records: historyOf(3, 3, 3, 3, 3, 3, 3, 3, 3, 3)},
		Logger:  zap.NewNop(),
	}

	smallPrediction := small.Predict(context.Background(), "DHL", testRoute(), 0)
	largePrediction := large.Predict(context.Background(), "DHL", testRoute(), 0)

	if largePrediction.Confidence <= smallPrediction.Confidence {
		t.Fatalf("confidence %v (n=10) must exceed %v (n=2)", largePrediction.Confidence, smallPrediction.Confidence)
	}
	if largePrediction.Confidence > maxConfidence {
		t.Fatalf("confidence %v exceeds cap %v", largePrediction.Confidence, maxConfidence)
	}
}

func TestPredictIgnoresNonPositiveDurations(t *testing.T) {
	p := &DeliveryPredictor{
		History: &memHistoryRepository{records: historyOf(-1, 0, 4)},
		Logger:  zap.NewNop(),
	}

	got := p.Predict(context.Background(), "DHL", testRoute(), 0)
	if got.EstimatedDays != 4 {
		t.Fatalf("estimated days = %v, want 4", got.EstimatedDays)
	}
}
