package carriers

import (
	"context"
	"errors"
	"testing"

	"shipping-decision-service/internal/domain"
)

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	inner := &MockCarrier{
		CarrierName: "DHL",
		QuoteErr:    &domain.CarrierError{Carrier: "DHL", Kind: domain.KindUnavailable, Message: "down"},
	}
	breaker := WithBreaker(inner)

	for i := 0; i < 5; i++ {
		if _, err := breaker.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage); err == nil {
			t.Fatalf("call %d: expected an error", i+1)
		}
	}

	// The sixth call must fail fast on the open breaker.
	_, err := breaker.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if !domain.IsKind(err, domain.KindUnavailable) {
		t.Fatalf("err = %v, want carrier unavailable", err)
	}

	var ce *domain.CarrierError
	if !errors.As(err, &ce) || ce.Message != "circuit breaker open" {
		t.Fatalf("err = %v, want open-breaker message", err)
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &MockCarrier{
		CarrierName: "DHL",
		Quote:       domain.CarrierQuote{Carrier: "DHL", Cost: 50, TransitDays: 3, Reliability: 0.95},
	}
	breaker := WithBreaker(inner)

	if breaker.Name() != "DHL" {
		t.Fatalf("name = %q, want DHL", breaker.Name())
	}

	quote, err := breaker.GetQuote(context.Background(), quoteOrigin, quoteDestination, quotePackage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Cost != 50 {
		t.Fatalf("cost = %v, want 50", quote.Cost)
	}
}

func TestBreakerIgnoresTrackingNotFound(t *testing.T) {
	// An unknown tracking number is an answer, not a carrier fault, so
	// it must never trip the breaker.
	inner := &MockCarrier{CarrierName: "DHL", Tracking: map[string]domain.TrackingInfo{}}
	breaker := WithBreaker(inner)

	for i := 0; i < 10; i++ {
		_, err := breaker.GetTracking(context.Background(), "NOPE")
		if !domain.IsTrackingNotFound(err) {
			t.Fatalf("call %d: err = %v, want tracking not found", i+1, err)
		}
	}
}

func TestBreakerTracksSuccessfully(t *testing.T) {
	inner := &MockCarrier{
		CarrierName: "DHL",
		Tracking: map[string]domain.TrackingInfo{
			"DHL123": {Carrier: "DHL", TrackingNumber: "DHL123", Status: domain.StatusDelivered},
		},
	}
	breaker := WithBreaker(inner)

	info, err := breaker.GetTracking(context.Background(), "DHL123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Status != domain.StatusDelivered {
		t.Fatalf("status = %q, want %q", info.Status, domain.StatusDelivered)
	}
}
