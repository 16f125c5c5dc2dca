// Package carriers contains one adapter per third-party shipping
// carrier. Each adapter owns its authentication and wire formats and
// converts carrier responses and failures into the generic domain
// types, so nothing carrier-specific leaks past the CarrierAdapter
// port.
package carriers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"shipping-decision-service/internal/domain"
)

// statusError maps a carrier HTTP status onto the engine's error
// taxonomy. tracking widens 404 into "tracking not found" since rate
// endpoints use 404 for bad routes, not missing shipments.
func statusError(carrier string, code int, body string, tracking bool) *domain.CarrierError {
	kind := domain.KindInvalidResponse
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = domain.KindAuthFailure
	case code == http.StatusTooManyRequests:
		kind = domain.KindRateLimited
	case code == http.StatusNotFound && tracking:
		kind = domain.KindTrackingNotFound
	case code >= 500:
		kind = domain.KindUnavailable
	}

	return &domain.CarrierError{Carrier: carrier, Kind: kind, Status: code, Message: body}
}

// doRequest executes one HTTP call and converts failures into typed
// carrier errors. Bodies of non-2xx responses are drained for context.
func doRequest(hc *http.Client, carrier string, req *http.Request, tracking bool) (*http.Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, &domain.CarrierError{Carrier: carrier, Kind: domain.KindUnavailable, Message: err.Error()}
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, statusError(carrier, resp.StatusCode, strings.TrimSpace(string(b)), tracking)
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429, 5xx)
// with exponential backoff while respecting context cancellation.
// Retrying is safe here: every retried call is an idempotent GET or a
// side-effect-free rate/track lookup.
func doWithRetry(
	ctx context.Context,
	hc *http.Client,
	carrier string,
	tracking bool,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &domain.CarrierError{Carrier: carrier, Kind: domain.KindUnavailable, Message: err.Error()}
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := doRequest(hc, carrier, req, tracking)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &domain.CarrierError{Carrier: carrier, Kind: domain.KindUnavailable, Message: ctx.Err().Error()}
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var ce *domain.CarrierError
	if errors.As(err, &ce) {
		return ce.Kind == domain.KindRateLimited || ce.Kind == domain.KindUnavailable
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// decodeJSON parses a carrier response body, closing it, and converts
// malformed payloads into invalid-response errors.
func decodeJSON(resp *http.Response, carrier string, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &domain.CarrierError{Carrier: carrier, Kind: domain.KindInvalidResponse, Message: "decode response: " + err.Error()}
	}
	return nil
}
