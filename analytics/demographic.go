package analytics

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDemographic = errors.New("invalid demographic")

// Demographic is a server-defined grouping key for enrollment breakdowns. An
// empty demographic means data across all demographics.
type Demographic string

// Demographics known to the analytics API.
const (
	DemographicBirthYear Demographic = "birth_year"
	DemographicEducation Demographic = "education"
	DemographicGender    Demographic = "gender"
	DemographicLocation  Demographic = "location"
)

var supportedDemographics = []Demographic{
	DemographicBirthYear,
	DemographicEducation,
	DemographicGender,
	DemographicLocation,
}

// String returns the string representation of the demographic.
func (d Demographic) String() string {
	return string(d)
}

// Validate checks if the demographic is one the API is known to support. The
// Course methods themselves never validate; this is for configuration input.
func (d Demographic) Validate() error {
	for _, known := range supportedDemographics {
		if d == known {
			return nil
		}
	}
	return ErrInvalidDemographic
}

// ParseDemographics parses a comma-separated string into a slice of Demographics.
func ParseDemographics(s string) ([]Demographic, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []Demographic{}, nil
	}

	parts := strings.Split(s, ",")
	demographics := make([]Demographic, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		d := Demographic(trimmed)
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid demographic %q: %w", trimmed, err)
		}
		demographics = append(demographics, d)
	}

	return demographics, nil
}
