package carriers

import (
	"context"
	"time"

	"shipping-decision-service/internal/domain"
)

// MockCarrier is an in-memory CarrierAdapter for tests and local runs
// without carrier credentials.
type MockCarrier struct {
	CarrierName string
	Quote       domain.CarrierQuote
	QuoteErr    error
	Tracking    map[string]domain.TrackingInfo
	Delay       time.Duration
}

func (m *MockCarrier) Name() string { return m.CarrierName }

func (m *MockCarrier) GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error) {
	if err := m.wait(ctx); err != nil {
		return domain.CarrierQuote{}, err
	}
	if m.QuoteErr != nil {
		return domain.CarrierQuote{}, m.QuoteErr
	}
	return m.Quote, nil
}

func (m *MockCarrier) GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error) {
	if err := m.wait(ctx); err != nil {
		return domain.TrackingInfo{}, err
	}
	info, ok := m.Tracking[trackingNumber]
	if !ok {
		return domain.TrackingInfo{}, &domain.CarrierError{Carrier: m.CarrierName, Kind: domain.KindTrackingNotFound, Message: "no shipment for " + trackingNumber}
	}
	return info, nil
}

func (m *MockCarrier) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &domain.CarrierError{Carrier: m.CarrierName, Kind: domain.KindUnavailable, Message: ctx.Err().Error()}
	case <-timer.C:
		return nil
	}
}
