package units

import (
	"fmt"
	"sort"

	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

var one = decimal.NewFromInt(1)

// significantDigits is the precision kept by quotient regardless of magnitude.
const significantDigits = 24

// quotient divides keeping significantDigits significant digits. decimal.Div
// rounds to a fixed number of decimal places, which loses precision on small
// values such as 1e-7 pcs in dozens.
func quotient(num, den decimal.Decimal) decimal.Decimal {
	if num.IsZero() {
		return decimal.Zero
	}
	places := significantDigits - (magnitude(num) - magnitude(den)) + 1
	places = max(places, int(decimal.DivisionPrecision))
	return num.DivRound(den, int32(places))
}

// magnitude is the position of the leading digit relative to the decimal point.
func magnitude(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

// Engine converts between units and computes VAT prices. It is immutable once
// built and safe for concurrent use.
type Engine struct {
	units map[string]Unit
	vat   map[string]decimal.Decimal
}

// NewEngine validates the tables and builds an engine. Every invalid row is
// reported, not just the first.
func NewEngine(unitTable []Unit, vatRules []VatRule) (*Engine, error) {
	e := &Engine{
		units: make(map[string]Unit, len(unitTable)),
		vat:   make(map[string]decimal.Decimal, len(vatRules)),
	}

	var errs error
	for i, u := range unitTable {
		code := normalizeCode(u.Code)
		switch {
		case code == "":
			errs = multierr.Append(errs, fmt.Errorf("unit[%d]: code is required", i))
			continue
		case u.ToBaseFactor.Sign() <= 0:
			errs = multierr.Append(errs, fmt.Errorf("unit %q: to_base_factor must be positive", code))
			continue
		}
		if _, dup := e.units[code]; dup {
			errs = multierr.Append(errs, fmt.Errorf("unit %q: duplicate code", code))
			continue
		}
		u.Code = code
		u.BaseUnit = normalizeCode(u.BaseUnit)
		e.units[code] = u
	}

	for i, r := range vatRules {
		category := normalizeCode(r.CategoryCode)
		if category == "" {
			errs = multierr.Append(errs, fmt.Errorf("vat_rule[%d]: category code is required", i))
			continue
		}
		if err := checkRate(r.Rate); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("vat_rule %q: %w", category, err))
			continue
		}
		e.vat[category] = r.Rate
	}

	if errs != nil {
		return nil, errs
	}
	return e, nil
}

// MustDefault builds an engine over DefaultUnits and the given VAT rules.
func MustDefault(vatRules ...VatRule) *Engine {
	e, err := NewEngine(DefaultUnits(), vatRules)
	if err != nil {
		panic(err)
	}
	return e
}

// Unit looks up a unit by code, case-insensitively.
func (e *Engine) Unit(code string) (Unit, bool) {
	u, ok := e.units[normalizeCode(code)]
	return u, ok
}

// Units returns the unit table ordered by base unit, then factor.
func (e *Engine) Units() []Unit {
	out := make([]Unit, 0, len(e.units))
	for _, u := range e.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BaseUnit != out[j].BaseUnit {
			return out[i].BaseUnit < out[j].BaseUnit
		}
		if c := out[i].ToBaseFactor.Cmp(out[j].ToBaseFactor); c != 0 {
			return c < 0
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// ConvertUnits converts value from one unit to another. Unknown units and units
// from different base families fail with *ConversionError. Results keep
// significantDigits significant digits.
func (e *Engine) ConvertUnits(value decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	from, to, err := e.compatible(fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	if from.Code == to.Code {
		return value, nil
	}
	return quotient(value.Mul(from.ToBaseFactor), to.ToBaseFactor), nil
}

// ToBase converts a quantity into its base unit and returns the base unit code.
func (e *Engine) ToBase(quantity decimal.Decimal, code string) (decimal.Decimal, string, error) {
	u, ok := e.Unit(code)
	if !ok {
		return decimal.Zero, "", &ConversionError{From: code, Reason: "unknown unit"}
	}
	if !u.Convertible() {
		return decimal.Zero, "", &ConversionError{From: code, Reason: "unit has no base unit"}
	}
	return quantity.Mul(u.ToBaseFactor), u.BaseUnit, nil
}

func (e *Engine) compatible(fromCode, toCode string) (Unit, Unit, error) {
	from, ok := e.Unit(fromCode)
	if !ok {
		return Unit{}, Unit{}, &ConversionError{From: fromCode, To: toCode, Reason: fmt.Sprintf("unknown unit %q", fromCode)}
	}
	to, ok := e.Unit(toCode)
	if !ok {
		return Unit{}, Unit{}, &ConversionError{From: fromCode, To: toCode, Reason: fmt.Sprintf("unknown unit %q", toCode)}
	}
	if from.Code == to.Code {
		return from, to, nil
	}
	if !from.Convertible() || !to.Convertible() {
		return Unit{}, Unit{}, &ConversionError{From: fromCode, To: toCode, Reason: "unit has no base unit"}
	}
	if from.BaseUnit != to.BaseUnit {
		return Unit{}, Unit{}, &ConversionError{
			From:   fromCode,
			To:     toCode,
			Reason: fmt.Sprintf("base %q differs from %q", from.BaseUnit, to.BaseUnit),
		}
	}
	return from, to, nil
}

// VatRate returns the rate for a category or *VatLookupError. A missing rule
// is never reported as 0%.
func (e *Engine) VatRate(categoryCode string) (decimal.Decimal, error) {
	rate, ok := e.vat[normalizeCode(categoryCode)]
	if !ok {
		return decimal.Zero, &VatLookupError{CategoryCode: categoryCode}
	}
	return rate, nil
}

// PriceExVat strips VAT: priceIncVat / (1 + rate).
func PriceExVat(priceIncVat, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := checkRate(rate); err != nil {
		return decimal.Zero, err
	}
	return quotient(priceIncVat, one.Add(rate)), nil
}

// PriceIncVat adds VAT: priceExVat * (1 + rate).
func PriceIncVat(priceExVat, rate decimal.Decimal) (decimal.Decimal, error) {
	if err := checkRate(rate); err != nil {
		return decimal.Zero, err
	}
	return priceExVat.Mul(one.Add(rate)), nil
}

// PriceExVat is the engine-bound form of the package function.
func (e *Engine) PriceExVat(priceIncVat, rate decimal.Decimal) (decimal.Decimal, error) {
	return PriceExVat(priceIncVat, rate)
}

// PriceIncVat is the engine-bound form of the package function.
func (e *Engine) PriceIncVat(priceExVat, rate decimal.Decimal) (decimal.Decimal, error) {
	return PriceIncVat(priceExVat, rate)
}

// PricePerBaseUnit normalises a pack price to a price per base unit, e.g. kr/g
// for a 2 kg pack. The pack quantity must be positive.
func (e *Engine) PricePerBaseUnit(packPrice, packQuantity decimal.Decimal, packUnit string) (decimal.Decimal, string, error) {
	if packQuantity.Sign() <= 0 {
		return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeValidation, "pack quantity must be positive").
			WithDetails(map[string]any{"pack_quantity": packQuantity.String()})
	}
	base, baseUnit, err := e.ToBase(packQuantity, packUnit)
	if err != nil {
		return decimal.Zero, "", err
	}
	return quotient(packPrice, base), baseUnit, nil
}

// PackPricePerBaseUnit parses a pack size label such as "12x500g" and returns
// the price per base unit for the whole pack.
func (e *Engine) PackPricePerBaseUnit(packPrice decimal.Decimal, packSize string) (decimal.Decimal, string, error) {
	size, err := ParsePackSize(packSize)
	if err != nil {
		return decimal.Zero, "", err
	}
	return e.PricePerBaseUnit(packPrice, size.TotalQuantity(), size.UnitCode)
}

func checkRate(rate decimal.Decimal) error {
	if rate.Sign() < 0 || rate.GreaterThan(one) {
		return &RateError{Rate: rate}
	}
	return nil
}
