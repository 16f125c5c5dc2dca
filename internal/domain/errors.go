package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the engine's error taxonomy. Carrier-scoped
// failures additionally carry carrier context via CarrierError.
var (
	// All configured adapters failed to produce a quote within the deadline.
	ErrNoCarriersAvailable = errors.New("no carriers available")

	// Request violated a domain invariant (non-positive dimensions,
	// all-zero priority weights, missing fields).
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind classifies a carrier-scoped failure.
type ErrorKind string

const (
	// Timeout or network failure reaching one carrier. Non-fatal:
	// dropped from aggregation.
	KindUnavailable ErrorKind = "carrier_unavailable"

	// Carrier rejected our credentials or token. Fatal: surfaced
	// distinctly so operators can rotate keys.
	KindAuthFailure ErrorKind = "authentication_failure"

	// Carrier throttled the request. Retryable with backoff at the
	// adapter layer only.
	KindRateLimited ErrorKind = "rate_limited"

	// Carrier has no record for the given tracking number.
	KindTrackingNotFound ErrorKind = "tracking_not_found"

	// Carrier returned a response the adapter could not interpret.
	KindInvalidResponse ErrorKind = "invalid_response"
)

// CarrierError is a typed failure from one carrier adapter.
type CarrierError struct {
	Carrier string
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *CarrierError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Carrier, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Carrier, e.Kind, e.Message)
}

// IsKind reports whether err is a CarrierError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CarrierError
	return errors.As(err, &ce) && ce.Kind == kind
}

// IsTrackingNotFound reports whether err means the carrier has no
// record for a tracking number.
func IsTrackingNotFound(err error) bool { return IsKind(err, KindTrackingNotFound) }

// IsAuthFailure reports whether err is a credential rejection.
func IsAuthFailure(err error) bool { return IsKind(err, KindAuthFailure) }
