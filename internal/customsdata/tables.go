// Package customsdata holds the embedded duty-rate and restriction
// reference tables used by the customs service. The tables are static
// regulatory data; swapping in a live regulatory API means replacing
// the loader, not the consumers.
package customsdata

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tariffs.yaml
var rawTariffs []byte

// Per-country duty parameters. Declared values at or below DeMinimis
// owe no duty.
type CountryRate struct {
	DutyRate  float64 `yaml:"duty_rate"`
	DeMinimis float64 `yaml:"de_minimis"`
}

// A single customs restriction rule. Empty Destination matches any
// destination country.
type RestrictionRule struct {
	Code        string  `yaml:"code"`
	Destination string  `yaml:"destination"`
	Embargo     bool    `yaml:"embargo"`
	MaxWeightKG float64 `yaml:"max_weight_kg"`
	Fragile     bool    `yaml:"fragile"`
	Reason      string  `yaml:"reason"`
}

type Tables struct {
	DefaultDutyRate float64                `yaml:"default_duty_rate"`
	Currency        string                 `yaml:"currency"`
	Countries       map[string]CountryRate `yaml:"countries"`
	Restrictions    []RestrictionRule      `yaml:"restrictions"`
}

// Load parses and validates the embedded reference tables.
func Load() (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(rawTariffs, &t); err != nil {
		return nil, fmt.Errorf("load customs tables: parse yaml: %w", err)
	}

	if t.DefaultDutyRate < 0 || t.DefaultDutyRate > 1 {
		return nil, fmt.Errorf("load customs tables: default_duty_rate %v out of range", t.DefaultDutyRate)
	}
	if t.Currency == "" {
		return nil, fmt.Errorf("load customs tables: currency is required")
	}
	for code, c := range t.Countries {
		if c.DutyRate < 0 || c.DutyRate > 1 {
			return nil, fmt.Errorf("load customs tables: country %s duty_rate %v out of range", code, c.DutyRate)
		}
		if c.DeMinimis < 0 {
			return nil, fmt.Errorf("load customs tables: country %s de_minimis %v negative", code, c.DeMinimis)
		}
	}
	for i, r := range t.Restrictions {
		if r.Code == "" {
			return nil, fmt.Errorf("load customs tables: restriction #%d has no code", i+1)
		}
	}

	return &t, nil
}

// RateFor returns the duty rate and de-minimis threshold for a
// destination country. Unknown countries fall back to the default rate
// with a zero de-minimis.
func (t *Tables) RateFor(countryCode string) CountryRate {
	if c, ok := t.Countries[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return c
	}
	return CountryRate{DutyRate: t.DefaultDutyRate}
}

// RulesFor returns the restriction rules applying to a destination
// country, including destination-agnostic rules.
func (t *Tables) RulesFor(countryCode string) []RestrictionRule {
	code := strings.ToUpper(strings.TrimSpace(countryCode))

	rules := make([]RestrictionRule, 0, len(t.Restrictions))
	for _, r := range t.Restrictions {
		if r.Destination == "" || r.Destination == code {
			rules = append(rules, r)
		}
	}
	return rules
}
