package units

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gsindri/kaupa-skil-sub004/pkg/enums"
)

// Unit is a unit of measure. Units sharing a BaseUnit convert into each other;
// ToBaseFactor turns one of this unit into base units (kg -> g is 1000).
type Unit struct {
	Code         string
	Name         string
	BaseUnit     string
	ToBaseFactor decimal.Decimal
}

// Convertible reports whether the unit belongs to a base-unit family.
func (u Unit) Convertible() bool {
	return u.BaseUnit != ""
}

// Dimension maps the unit's base unit to its measurement family. Units outside
// the standard g/ml/pcs families report false.
func (u Unit) Dimension() (enums.UnitDimension, bool) {
	switch normalizeCode(u.BaseUnit) {
	case "g":
		return enums.UnitDimensionMass, true
	case "ml":
		return enums.UnitDimensionVolume, true
	case "pcs":
		return enums.UnitDimensionCount, true
	}
	return "", false
}

// VatRule is the VAT rate fraction for a product category.
type VatRule struct {
	CategoryCode string
	Rate         decimal.Decimal
}

// DefaultUnits is the standard mass, volume and count table used when the
// store holds no units of its own.
func DefaultUnits() []Unit {
	return []Unit{
		{Code: "g", Name: "gram", BaseUnit: "g", ToBaseFactor: decimal.NewFromInt(1)},
		{Code: "kg", Name: "kilogram", BaseUnit: "g", ToBaseFactor: decimal.NewFromInt(1000)},
		{Code: "mg", Name: "milligram", BaseUnit: "g", ToBaseFactor: decimal.New(1, -3)},
		{Code: "ml", Name: "millilitre", BaseUnit: "ml", ToBaseFactor: decimal.NewFromInt(1)},
		{Code: "cl", Name: "centilitre", BaseUnit: "ml", ToBaseFactor: decimal.NewFromInt(10)},
		{Code: "dl", Name: "decilitre", BaseUnit: "ml", ToBaseFactor: decimal.NewFromInt(100)},
		{Code: "l", Name: "litre", BaseUnit: "ml", ToBaseFactor: decimal.NewFromInt(1000)},
		{Code: "pcs", Name: "piece", BaseUnit: "pcs", ToBaseFactor: decimal.NewFromInt(1)},
		{Code: "stk", Name: "stykki", BaseUnit: "pcs", ToBaseFactor: decimal.NewFromInt(1)},
		{Code: "dozen", Name: "dozen", BaseUnit: "pcs", ToBaseFactor: decimal.NewFromInt(12)},
	}
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
