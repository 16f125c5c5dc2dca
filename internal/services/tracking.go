package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/platform/obs"
	"shipping-decision-service/internal/ports"
)

// Bound on concurrent carrier calls during batch tracking.
const batchTrackingConcurrency = 5

// TrackingService canonicalizes tracking lookups across carriers and
// shields carrier APIs from repeated UI polling with a short-TTL cache.
type TrackingService struct {
	adapters map[string]ports.CarrierAdapter
	cache    ports.TrackingCache // optional, advisory
	logger   *zap.Logger
}

func NewTrackingService(adapters []ports.CarrierAdapter, cache ports.TrackingCache, logger *zap.Logger) *TrackingService {
	byName := make(map[string]ports.CarrierAdapter, len(adapters))
	for _, a := range adapters {
		byName[strings.ToLower(a.Name())] = a
	}
	return &TrackingService{adapters: byName, cache: cache, logger: logger}
}

// Track fetches canonicalized tracking state for one shipment.
func (s *TrackingService) Track(ctx context.Context, trackingNumber, carrier string) (_ domain.TrackingInfo, err error) {
	defer obs.Time(ctx, s.logger, "tracking.Track")(&err)

	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return domain.TrackingInfo{}, fmt.Errorf("track: %w: tracking number is required", domain.ErrInvalidInput)
	}

	adapter, ok := s.adapters[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok {
		return domain.TrackingInfo{}, fmt.Errorf("track: %w: unknown carrier %q", domain.ErrInvalidInput, carrier)
	}

	if s.cache != nil {
		cached, cerr := s.cache.Get(ctx, adapter.Name(), trackingNumber)
		if cerr != nil {
			s.logger.Warn("tracking cache read failed", zap.String("carrier", adapter.Name()), zap.Error(cerr))
		} else if cached != nil {
			return *cached, nil
		}
	}

	info, err := adapter.GetTracking(ctx, trackingNumber)
	if err != nil {
		return domain.TrackingInfo{}, fmt.Errorf("track %s/%s: %w", adapter.Name(), trackingNumber, err)
	}

	if s.cache != nil {
		if cerr := s.cache.Put(ctx, info); cerr != nil {
			s.logger.Warn("tracking cache write failed", zap.String("carrier", adapter.Name()), zap.Error(cerr))
		}
	}

	return info, nil
}

// TrackBatch resolves many shipments with bounded concurrency. Items
// fail individually: one bad tracking number never aborts the others.
// Results preserve the input order.
func (s *TrackingService) TrackBatch(ctx context.Context, refs []domain.TrackingRef) []domain.TrackingResult {
	results := make([]domain.TrackingResult, len(refs))

	sem := make(chan struct{}, batchTrackingConcurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref domain.TrackingRef) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			info, err := s.Track(ctx, ref.TrackingNumber, ref.Carrier)
			if err != nil {
				results[i] = domain.TrackingResult{Ref: ref, Err: err}
				return
			}
			results[i] = domain.TrackingResult{Ref: ref, Info: &info}
		}(i, ref)
	}

	wg.Wait()
	return results
}
