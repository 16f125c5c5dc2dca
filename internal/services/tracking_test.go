package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"shipping-decision-service/internal/adapters/carriers"
	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/ports"
)

type memTrackingCache struct {
	mu      sync.Mutex
	entries map[string]domain.TrackingInfo
}

func newMemTrackingCache() *memTrackingCache {
	return &memTrackingCache{entries: make(map[string]domain.TrackingInfo)}
}

func (c *memTrackingCache) Get(ctx context.Context, carrier, trackingNumber string) (*domain.TrackingInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if info, ok := c.entries[carrier+":"+trackingNumber]; ok {
		return &info, nil
	}
	return nil, nil
}

func (c *memTrackingCache) Put(ctx context.Context, info domain.TrackingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[info.Carrier+":"+info.TrackingNumber] = info
	return nil
}

func trackingFixture() *carriers.MockCarrier {
	return &carriers.MockCarrier{
		CarrierName: "DHL",
		Tracking: map[string]domain.TrackingInfo{
			"DHL123": {
				Carrier:        "DHL",
				TrackingNumber: "DHL123",
				Status:         domain.StatusInTransit,
				LastUpdated:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestTrackKnownShipment(t *testing.T) {
	svc := NewTrackingService([]ports.CarrierAdapter{trackingFixture()}, nil, zap.NewNop())

	info, err := svc.Track(context.Background(), "DHL123", "dhl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Status != domain.StatusInTransit {
		t.Fatalf("status = %q, want %q", info.Status, domain.StatusInTransit)
	}
}

func TestTrackUnknownCarrier(t *testing.T) {
	svc := NewTrackingService([]ports.CarrierAdapter{trackingFixture()}, nil, zap.NewNop())

	_, err := svc.Track(context.Background(), "DHL123", "parcelforce")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTrackUnknownNumber(t *testing.T) {
	svc := NewTrackingService([]ports.CarrierAdapter{trackingFixture()}, nil, zap.NewNop())

	_, err := svc.Track(context.Background(), "NOPE", "DHL")
	if !domain.IsTrackingNotFound(err) {
		t.Fatalf("err = %v, want tracking not found", err)
	}
}

func TestTrackServesFromCache(t *testing.T) {
	trackingCache := newMemTrackingCache()
	cached := domain.TrackingInfo{Carrier: "DHL", TrackingNumber: "CACHED1", Status: domain.StatusDelivered}
	if err := trackingCache.Put(context.Background(), cached); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	// The adapter has no record; only the cache can answer.
	svc := NewTrackingService([]ports.CarrierAdapter{trackingFixture()}, trackingCache, zap.NewNop())

	info, err := svc.Track(context.Background(), "CACHED1", "DHL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Status != domain.StatusDelivered {
		t.Fatalf("status = %q, want cached %q", info.Status, domain.StatusDelivered)
	}
}

func TestTrackWritesCache(t *testing.T) {
	trackingCache := newMemTrackingCache()
	svc := NewTrackingService([]ports.CarrierAdapter{trackingFixture()}, trackingCache, zap.NewNop())

	if _, err := svc.Track(context.Background(), "DHL123", "DHL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := trackingCache.Get(context.Background(), "DHL", "DHL123")
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if got == nil || got.Status != domain.StatusInTransit {
		t.Fatalf("cached info = %+v, want in-transit entry", got)
	}
}

func TestTrackBatchIsolatesFailures(t *testing.T) {
	fedex := &carriers.MockCarrier{
		CarrierName: "FedEx",
		Tracking: map[string]domain.TrackingInfo{
			"FDX900": {Carrier: "FedEx", TrackingNumber: "FDX900", Status: domain.StatusDelivered},
		},
	}
	svc := NewTrackingService([]ports.CarrierAdapter{trackingFixture(), fedex}, nil, zap.NewNop())

	refs := []domain.TrackingRef{
		{Carrier: "DHL", TrackingNumber: "DHL123"},
		{Carrier: "FedEx", TrackingNumber: "FDX900"},
		{Carrier: "DHL", TrackingNumber: "MISSING"},
	}

	results := svc.TrackBatch(context.Background(), refs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Results preserve input order.
	if results[0].Err != nil || results[0].Info == nil || results[0].Info.TrackingNumber != "DHL123" {
		t.Fatalf("result[0] = %+v, want DHL123 success", results[0])
	}
	if results[1].Err != nil || results[1].Info == nil || results[1].Info.Status != domain.StatusDelivered {
		t.Fatalf("result[1] = %+v, want FDX900 delivered", results[1])
	}
	if !domain.IsTrackingNotFound(results[2].Err) {
		t.Fatalf("result[2].Err = %v, want tracking not found", results[2].Err)
	}
}

func TestTrackBatchEmpty(t *testing.T) {
	svc := NewTrackingService(nil, nil, zap.NewNop())

	results := svc.TrackBatch(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
