package carriers

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/ports"
)

// trackingOutcome lets GetTracking pass a tracking-not-found result
// through the breaker without counting it as a carrier fault.
type trackingOutcome struct {
	info domain.TrackingInfo
	err  error
}

// BreakerAdapter decorates a carrier adapter with a circuit breaker so
// a carrier that is hard-down fails fast instead of burning the
// aggregate deadline on every request. An open breaker surfaces as
// CarrierUnavailable, which the aggregator absorbs like any other
// per-carrier failure.
type BreakerAdapter struct {
	inner ports.CarrierAdapter
	cb    *gobreaker.CircuitBreaker
}

func WithBreaker(inner ports.CarrierAdapter) *BreakerAdapter {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &BreakerAdapter{inner: inner, cb: cb}
}

func (b *BreakerAdapter) Name() string { return b.inner.Name() }

func (b *BreakerAdapter) GetQuote(ctx context.Context, origin, destination domain.Location, pkg domain.PackageInfo) (domain.CarrierQuote, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.GetQuote(ctx, origin, destination, pkg)
	})
	if err != nil {
		return domain.CarrierQuote{}, b.mapBreakerErr(err)
	}
	return v.(domain.CarrierQuote), nil
}

func (b *BreakerAdapter) GetTracking(ctx context.Context, trackingNumber string) (domain.TrackingInfo, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		info, err := b.inner.GetTracking(ctx, trackingNumber)
		if err != nil && domain.IsTrackingNotFound(err) {
			// The carrier answered; an unknown number is not a fault.
			return trackingOutcome{err: err}, nil
		}
		return trackingOutcome{info: info, err: err}, err
	})
	if err != nil {
		return domain.TrackingInfo{}, b.mapBreakerErr(err)
	}

	outcome := v.(trackingOutcome)
	return outcome.info, outcome.err
}

func (b *BreakerAdapter) mapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.CarrierError{Carrier: b.inner.Name(), Kind: domain.KindUnavailable, Message: "circuit breaker open"}
	}
	return err
}
