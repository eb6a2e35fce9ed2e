package enums

import (
	"fmt"
	"strings"
)

// UnitDimension groups units that share a base unit.
type UnitDimension string

const (
	UnitDimensionMass   UnitDimension = "mass"
	UnitDimensionVolume UnitDimension = "volume"
	UnitDimensionCount  UnitDimension = "count"
)

var validUnitDimensions = []UnitDimension{
	UnitDimensionMass,
	UnitDimensionVolume,
	UnitDimensionCount,
}

// String implements fmt.Stringer.
func (u UnitDimension) String() string {
	return string(u)
}

// IsValid reports whether the value is known.
func (u UnitDimension) IsValid() bool {
	for _, candidate := range validUnitDimensions {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnitDimension converts raw input into a UnitDimension. Matching is case-insensitive.
func ParseUnitDimension(value string) (UnitDimension, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validUnitDimensions {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit dimension %q", value)
}
