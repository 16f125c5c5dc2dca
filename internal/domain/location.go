package domain

import "strings"

// Immutable postal address used as a shipment endpoint.
// CountryCode is an ISO 3166-1 alpha-2 code (e.g. "US", "IN").
type Location struct {
	Street      string
	City        string
	CountryCode string
	PostalCode  string
}

// Key returns a stable cache/correlation key for the location.
func (l Location) Key() string {
	return strings.ToUpper(strings.TrimSpace(l.CountryCode)) + ":" + strings.TrimSpace(l.PostalCode)
}

// A shipping lane between two locations, used to correlate
// delivery history and tracking data.
type Route struct {
	Origin      Location
	Destination Location
}

// Key returns a stable identifier for the route.
func (r Route) Key() string {
	return r.Origin.Key() + "->" + r.Destination.Key()
}

// International reports whether the route crosses a border.
func (r Route) International() bool {
	return !strings.EqualFold(
		strings.TrimSpace(r.Origin.CountryCode),
		strings.TrimSpace(r.Destination.CountryCode),
	)
}
