package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"shipping-decision-service/internal/domain"
	"shipping-decision-service/internal/platform/obs"
	"shipping-decision-service/internal/ports"
)

type quoteResult struct {
	carrier string
	quote   domain.CarrierQuote
	err     error
}

// QuoteAggregator fans one quote request out to every configured
// carrier adapter concurrently and collects whatever returns in time.
//
// Per-adapter failures are absorbed here: a carrier that errors or
// times out is logged and dropped, never retried at this layer. Only
// two conditions are fatal: zero quotes (ErrNoCarriersAvailable) and a
// credential rejection (surfaced so operators can rotate keys).
// Returned quotes are in completion order, not carrier order; callers
// must score rather than assume ordering.
type QuoteAggregator struct {
	Adapters []ports.CarrierAdapter
	Cache    ports.QuoteCache // optional, advisory

	// AggregateTimeout bounds the whole fan-out; AdapterTimeout bounds
	// each carrier call within it.
	AggregateTimeout time.Duration
	AdapterTimeout   time.Duration

	Logger *zap.Logger
}

// GetAllQuotes collects quotes for one shipment from all adapters.
func (a *QuoteAggregator) GetAllQuotes(
	ctx context.Context,
	origin, destination domain.Location,
	pkg domain.PackageInfo,
) (_ []domain.CarrierQuote, err error) {
	defer obs.Time(ctx, a.Logger, "aggregator.GetAllQuotes")(&err)

	if len(a.Adapters) == 0 {
		return nil, fmt.Errorf("get all quotes: no adapters configured: %w", domain.ErrNoCarriersAvailable)
	}

	timeout := a.AdapterTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	if a.AggregateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.AggregateTimeout)
		defer cancel()
	}

	results := make(chan quoteResult, len(a.Adapters))
	var wg sync.WaitGroup

	for _, adapter := range a.Adapters {
		wg.Add(1)
		go func(adapter ports.CarrierAdapter) {
			defer wg.Done()
			results <- a.fetchQuote(ctx, adapter, timeout, origin, destination, pkg)
		}(adapter)
	}

	wg.Wait()
	close(results)

	quotes := make([]domain.CarrierQuote, 0, len(a.Adapters))
	var authErr error
	for res := range results {
		if res.err != nil {
			if domain.IsAuthFailure(res.err) && authErr == nil {
				authErr = res.err
			}
			a.Logger.Warn("carrier quote dropped",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.String("carrier", res.carrier),
				zap.Error(res.err),
			)
			continue
		}
		quotes = append(quotes, res.quote)
	}

	// Credential rejections are never silently degraded.
	if authErr != nil {
		return nil, fmt.Errorf("get all quotes: %w", authErr)
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("get all quotes: all %d adapters failed: %w", len(a.Adapters), domain.ErrNoCarriersAvailable)
	}

	return quotes, nil
}

// fetchQuote runs one adapter call bounded by the per-adapter timeout,
// consulting the quote cache on both sides of the call.
func (a *QuoteAggregator) fetchQuote(
	ctx context.Context,
	adapter ports.CarrierAdapter,
	timeout time.Duration,
	origin, destination domain.Location,
	pkg domain.PackageInfo,
) quoteResult {
	carrier := adapter.Name()
	key := quoteCacheKey(carrier, origin, destination, pkg)

	if a.Cache != nil {
		cached, err := a.Cache.Get(ctx, key)
		if err != nil {
			a.Logger.Warn("quote cache read failed", zap.String("carrier", carrier), zap.Error(err))
		} else if cached != nil {
			return quoteResult{carrier: carrier, quote: *cached}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	quote, err := adapter.GetQuote(callCtx, origin, destination, pkg)
	if err != nil {
		return quoteResult{carrier: carrier, err: err}
	}

	if a.Cache != nil {
		if err := a.Cache.Put(ctx, key, quote); err != nil {
			a.Logger.Warn("quote cache write failed", zap.String("carrier", carrier), zap.Error(err))
		}
	}

	return quoteResult{carrier: carrier, quote: quote}
}

func quoteCacheKey(carrier string, origin, destination domain.Location, pkg domain.PackageInfo) string {
	route := domain.Route{Origin: origin, Destination: destination}
	return carrier + "|" + route.Key() + "|" + pkg.Fingerprint()
}
