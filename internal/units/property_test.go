package units

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

var relativeTolerance = decimal.New(1, -9)

func withinTolerance(got, want decimal.Decimal) bool {
	if want.IsZero() {
		return got.IsZero()
	}
	return got.Sub(want).Abs().Div(want.Abs()).LessThanOrEqual(relativeTolerance)
}

func compatiblePairs(engine *Engine) [][2]string {
	var pairs [][2]string
	list := engine.Units()
	for _, a := range list {
		for _, b := range list {
			if a.BaseUnit == b.BaseUnit {
				pairs = append(pairs, [2]string{a.Code, b.Code})
			}
		}
	}
	return pairs
}

func TestConvertUnitsRoundTripProperty(t *testing.T) {
	engine := MustDefault()
	pairs := compatiblePairs(engine)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("convert(convert(v, a, b), b, a) == v", prop.ForAll(
		func(idx int, exp, mantissa float64) bool {
			pair := pairs[idx]
			v := decimal.NewFromFloat(mantissa * math.Pow(10, exp))
			there, err := engine.ConvertUnits(v, pair[0], pair[1])
			if err != nil {
				return false
			}
			back, err := engine.ConvertUnits(there, pair[1], pair[0])
			if err != nil {
				return false
			}
			return withinTolerance(back, v)
		},
		gen.IntRange(0, len(pairs)-1),
		gen.Float64Range(-9, 6),
		gen.Float64Range(1, 10),
	))

	properties.TestingRun(t)
}

func TestConvertUnitsKeepsSmallValues(t *testing.T) {
	engine := MustDefault()
	v := decimal.RequireFromString("0.0000001")

	dozens, err := engine.ConvertUnits(v, "pcs", "dozen")
	if err != nil {
		t.Fatal(err)
	}
	back, err := engine.ConvertUnits(dozens, "dozen", "pcs")
	if err != nil {
		t.Fatal(err)
	}
	if !withinTolerance(back, v) {
		t.Fatalf("pcs -> dozen -> pcs of %s gave %s", v, back)
	}
}

func TestVatRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("priceExVat(priceIncVat(p, r), r) == p", prop.ForAll(
		func(rawPrice, rawRate float64) bool {
			price := decimal.NewFromFloat(rawPrice).Round(2)
			rate := decimal.NewFromFloat(rawRate).Round(4)
			inc, err := PriceIncVat(price, rate)
			if err != nil {
				return false
			}
			ex, err := PriceExVat(inc, rate)
			if err != nil {
				return false
			}
			return withinTolerance(ex, price)
		},
		gen.Float64Range(0.01, 10_000_000),
		gen.Float64Range(0, 0.9999),
	))

	properties.TestingRun(t)
}
