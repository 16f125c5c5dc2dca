package services

import (
	"math"

	"shipping-decision-service/internal/customsdata"
	"shipping-decision-service/internal/domain"
)

// Document names produced for cross-border shipments.
const (
	docCommercialInvoice  = "Commercial Invoice"
	docPackingList        = "Packing List"
	docCustomsDeclaration = "Customs Declaration (CN23)"
	docExportInformation  = "Electronic Export Information"
)

// Declared values above this require export information filing.
const exportInformationThreshold = 2500.0

// CustomsService resolves restrictions, duties and documentation for
// international shipments. All three checks are pure functions over the
// embedded reference tables: deterministic given the same inputs, and
// independent of each other so callers may run them concurrently.
type CustomsService struct {
	Tables *customsdata.Tables
}

// CheckRestrictions returns every customs rule the shipment violates.
// Violations are data, not errors: an empty slice means the shipment is
// permitted, and the caller decides whether to block otherwise.
func (s *CustomsService) CheckRestrictions(origin, destination domain.Location, pkg domain.PackageInfo) []domain.Restriction {
	violations := []domain.Restriction{}

	for _, rule := range s.Tables.RulesFor(destination.CountryCode) {
		switch {
		case rule.Embargo:
			violations = append(violations, domain.Restriction{Code: rule.Code, Reason: rule.Reason})

		case rule.MaxWeightKG > 0 && pkg.WeightKG > rule.MaxWeightKG:
			violations = append(violations, domain.Restriction{Code: rule.Code, Reason: rule.Reason})

		case rule.Fragile && pkg.Fragile:
			violations = append(violations, domain.Restriction{Code: rule.Code, Reason: rule.Reason})
		}
	}

	return violations
}

// CalculateDuties computes the duty owed on a declared value shipped
// between two countries. Pure and deterministic: the same inputs always
// yield the same amount. Duty applies only strictly above the
// destination's de-minimis threshold.
func (s *CustomsService) CalculateDuties(origin, destination domain.Location, declaredValue float64) (float64, string) {
	if declaredValue <= 0 {
		return 0, s.Tables.Currency
	}

	rate := s.Tables.RateFor(destination.CountryCode)
	if declaredValue <= rate.DeMinimis {
		return 0, s.Tables.Currency
	}

	// Round to cents so repeated calculations agree exactly.
	duty := math.Round(declaredValue*rate.DutyRate*100) / 100
	return duty, s.Tables.Currency
}

// GenerateDocumentation lists the documents the shipment must carry.
func (s *CustomsService) GenerateDocumentation(origin, destination domain.Location, pkg domain.PackageInfo, declaredValue float64) []string {
	docs := []string{docCommercialInvoice, docPackingList}

	rate := s.Tables.RateFor(destination.CountryCode)
	if declaredValue > rate.DeMinimis {
		docs = append(docs, docCustomsDeclaration)
	}
	if declaredValue > exportInformationThreshold {
		docs = append(docs, docExportInformation)
	}

	return docs
}
