package carriers

import (
	"strings"
	"time"

	"shipping-decision-service/internal/domain"
)

// canonicalStatus resolves a carrier status code against that
// carrier's vocabulary map. Unmapped codes degrade to UNKNOWN rather
// than failing the lookup.
func canonicalStatus(vocabulary map[string]domain.TrackingStatus, code string) domain.TrackingStatus {
	if status, ok := vocabulary[strings.ToLower(strings.TrimSpace(code))]; ok {
		return status
	}
	return domain.StatusUnknown
}

// Timestamp layouts observed across carrier APIs, most specific first.
var carrierTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseCarrierTime parses a carrier timestamp, returning the zero time
// for empty or unparseable values. Tracking timestamps are advisory so
// a malformed one never fails the whole lookup.
func parseCarrierTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range carrierTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
