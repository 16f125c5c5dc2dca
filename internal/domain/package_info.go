package domain

import "fmt"

// Physical description of a parcel.
// All numeric fields must be strictly positive.
type PackageInfo struct {
	WeightKG float64
	LengthCM float64
	WidthCM  float64
	HeightCM float64
	Fragile  bool
}

// Validate checks the package invariants.
func (p PackageInfo) Validate() error {
	if p.WeightKG <= 0 {
		return fmt.Errorf("%w: package weight must be > 0, got %v", ErrInvalidInput, p.WeightKG)
	}
	if p.LengthCM <= 0 || p.WidthCM <= 0 || p.HeightCM <= 0 {
		return fmt.Errorf(
			"%w: package dimensions must be > 0, got %vx%vx%v",
			ErrInvalidInput, p.LengthCM, p.WidthCM, p.HeightCM,
		)
	}
	return nil
}

// Fingerprint returns a stable cache-key component for the package.
// Packages with different weight, dimensions or fragility never share
// cached quotes.
func (p PackageInfo) Fingerprint() string {
	return fmt.Sprintf("%.2fkg:%.0fx%.0fx%.0f:fragile=%t", p.WeightKG, p.LengthCM, p.WidthCM, p.HeightCM, p.Fragile)
}
