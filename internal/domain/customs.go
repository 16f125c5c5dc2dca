package domain

import "fmt"

// Input for a cross-border clearance check.
type InternationalShipment struct {
	Origin         Location
	Destination    Location
	PackageDetails PackageInfo
	DeclaredValue  float64
}

// Validate checks the shipment invariants.
func (s InternationalShipment) Validate() error {
	if err := s.PackageDetails.Validate(); err != nil {
		return err
	}
	if s.DeclaredValue <= 0 {
		return fmt.Errorf("%w: declared value must be > 0, got %v", ErrInvalidInput, s.DeclaredValue)
	}
	return nil
}

// A single customs rule violated by a shipment. Restrictions are data,
// not errors: the caller decides whether to block the shipment.
type Restriction struct {
	Code   string
	Reason string
}

// Clearance result for an international shipment. Restrictions is empty
// when the shipment is permitted.
type CustomsDocumentation struct {
	RequiredDocuments []string
	DutyAmount        float64
	Currency          string
	Restrictions      []Restriction
}

// Permitted reports whether no restrictions were violated.
func (d CustomsDocumentation) Permitted() bool { return len(d.Restrictions) == 0 }
