package delivery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	supplierA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	supplierB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	supplierC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	monday0900 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func line(supplier uuid.UUID, qty int, unitPrice string) CartLineItem {
	return CartLineItem{
		SupplierID:     supplier,
		SupplierName:   "Supplier " + supplier.String()[35:],
		Quantity:       qty,
		UnitPriceExVat: dec(unitPrice),
	}
}

func fixedCalculator() *Calculator {
	return NewCalculator(WithClock(func() time.Time { return monday0900 }))
}

func TestCalculateOrderDelivery_Scenario(t *testing.T) {
	rules := map[uuid.UUID]Rule{
		supplierA: {
			SupplierID:         supplierA,
			FlatFee:            dec("1500"),
			FreeThresholdExVat: decPtr("10000"),
			FuelSurchargePct:   dec("0.1"),
			IsActive:           true,
		},
	}

	calcs := fixedCalculator().CalculateOrderDelivery([]CartLineItem{line(supplierA, 4, "2000")}, rules)
	require.Len(t, calcs, 1)
	c := calcs[0]

	assert.True(t, c.SubtotalExVat.Equal(dec("8000")))
	assert.True(t, c.DeliveryFee.Equal(dec("1500")))
	assert.True(t, c.FuelSurcharge.Equal(dec("150")))
	assert.True(t, c.PalletDeposit.IsZero())
	assert.True(t, c.TotalDeliveryCost.Equal(dec("1650")))
	assert.True(t, c.LandedCost.Equal(dec("9650")))
	require.NotNil(t, c.AmountToFreeDelivery)
	assert.True(t, c.AmountToFreeDelivery.Equal(dec("2000")))
	require.NotNil(t, c.ThresholdAmount)
	assert.True(t, c.ThresholdAmount.Equal(dec("10000")))
	assert.True(t, c.IsUnderThreshold)
}

func TestFreeThresholdDominatesTiersAndFlatFee(t *testing.T) {
	rule := Rule{
		FlatFee:            dec("2500"),
		FreeThresholdExVat: decPtr("50000"),
		Tiers:              []Tier{{Threshold: dec("0"), Fee: dec("1000")}, {Threshold: dec("40000"), Fee: dec("700")}},
		FuelSurchargePct:   dec("0.2"),
		IsActive:           true,
	}
	assert.True(t, rule.Fee(dec("50000")).IsZero())

	calcs := fixedCalculator().CalculateOrderDelivery(
		[]CartLineItem{line(supplierA, 1, "50000")},
		map[uuid.UUID]Rule{supplierA: rule},
	)
	require.Len(t, calcs, 1)
	assert.True(t, calcs[0].DeliveryFee.IsZero())
	assert.True(t, calcs[0].FuelSurcharge.IsZero())
	assert.False(t, calcs[0].IsUnderThreshold)
	assert.True(t, calcs[0].AmountToFreeDelivery.IsZero())
}

func TestTierSelection(t *testing.T) {
	rule := Rule{
		FlatFee: dec("9999"),
		Tiers: []Tier{
			{Threshold: dec("30000"), Fee: dec("0")},
			{Threshold: dec("0"), Fee: dec("1000")},
			{Threshold: dec("10000"), Fee: dec("500")},
		},
	}
	cases := map[string]string{
		"5000":  "1000",
		"10000": "500",
		"15000": "500",
		"35000": "0",
	}
	for subtotal, want := range cases {
		assert.True(t, rule.Fee(dec(subtotal)).Equal(dec(want)), "subtotal %s", subtotal)
	}
}

func TestTierFallsBackToFlatFee(t *testing.T) {
	rule := Rule{FlatFee: dec("1200"), Tiers: []Tier{{Threshold: dec("5000"), Fee: dec("600")}}}
	assert.True(t, rule.Fee(dec("4999")).Equal(dec("1200")))
	assert.True(t, rule.Fee(dec("5000")).Equal(dec("600")))
}

func TestMissingOrInactiveRuleFailsOpen(t *testing.T) {
	items := []CartLineItem{line(supplierB, 2, "300"), line(supplierA, 1, "100")}
	rules := map[uuid.UUID]Rule{
		supplierB: {FlatFee: dec("1500"), FreeThresholdExVat: decPtr("10000"), IsActive: false},
	}

	calcs := fixedCalculator().CalculateOrderDelivery(items, rules)
	require.Len(t, calcs, 2)
	assert.Equal(t, supplierA, calcs[0].SupplierID)
	assert.Equal(t, supplierB, calcs[1].SupplierID)
	for _, c := range calcs {
		assert.True(t, c.TotalDeliveryCost.IsZero())
		assert.False(t, c.IsUnderThreshold)
		assert.Nil(t, c.AmountToFreeDelivery)
		assert.Nil(t, c.ThresholdAmount)
		assert.Nil(t, c.NextDeliveryDay)
		assert.True(t, c.LandedCost.Equal(c.SubtotalExVat))
	}
}

func TestPalletDepositCountsQualifyingLines(t *testing.T) {
	excluded := false
	items := []CartLineItem{
		line(supplierA, 2, "100"),
		line(supplierA, 0, "100"),
		line(supplierA, 1, "100"),
	}
	items = append(items, CartLineItem{SupplierID: supplierA, Quantity: 5, UnitPriceExVat: dec("10"), PalletEligible: &excluded})
	rules := map[uuid.UUID]Rule{supplierA: {PalletDepositPerUnit: dec("450"), IsActive: true}}

	calcs := fixedCalculator().CalculateOrderDelivery(items, rules)
	require.Len(t, calcs, 1)
	assert.True(t, calcs[0].PalletDeposit.Equal(dec("900")), "got %s", calcs[0].PalletDeposit)

	perUnit := NewCalculator(WithPalletCounter(func(items []CartLineItem) int {
		total := 0
		for _, it := range items {
			total += it.Quantity
		}
		return total
	}))
	calcs = perUnit.CalculateOrderDelivery(items, rules)
	assert.True(t, calcs[0].PalletDeposit.Equal(dec("3600")), "got %s", calcs[0].PalletDeposit)
}

func TestCalculateOrderDelivery_Empty(t *testing.T) {
	calcs := fixedCalculator().CalculateOrderDelivery(nil, nil)
	require.NotNil(t, calcs)
	assert.Empty(t, calcs)
}

func TestCalculateOrderDelivery_IsDeterministic(t *testing.T) {
	items := []CartLineItem{line(supplierC, 1, "10"), line(supplierA, 1, "20"), line(supplierB, 3, "5"), line(supplierA, 2, "1")}
	rules := map[uuid.UUID]Rule{supplierA: {FlatFee: dec("100"), IsActive: true}}
	calc := fixedCalculator()

	first := calc.CalculateOrderDelivery(items, rules)
	second := calc.CalculateOrderDelivery(items, rules)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, []uuid.UUID{supplierA, supplierB, supplierC}, []uuid.UUID{first[0].SupplierID, first[1].SupplierID, first[2].SupplierID})
	assert.True(t, first[0].SubtotalExVat.Equal(dec("22")))
}

func TestLandedCostIdentityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	calc := fixedCalculator()

	properties.Property("landed = subtotal + fee + fuel + pallet, exactly", prop.ForAll(
		func(qty int, unitCents int64, flatCents int64, thresholdCents int64, fuelBps int64, palletCents int64) bool {
			rule := Rule{
				FlatFee:              decimal.New(flatCents, -2),
				FuelSurchargePct:     decimal.New(fuelBps, -4),
				PalletDepositPerUnit: decimal.New(palletCents, -2),
				Tiers:                []Tier{{Threshold: decimal.New(thresholdCents/2, -2), Fee: decimal.New(flatCents/2, -2)}},
				IsActive:             true,
			}
			threshold := decimal.New(thresholdCents, -2)
			rule.FreeThresholdExVat = &threshold

			calcs := calc.CalculateOrderDelivery([]CartLineItem{{
				SupplierID:     supplierA,
				Quantity:       qty,
				UnitPriceExVat: decimal.New(unitCents, -2),
			}}, map[uuid.UUID]Rule{supplierA: rule})
			if len(calcs) != 1 {
				return false
			}
			c := calcs[0]
			total := c.DeliveryFee.Add(c.FuelSurcharge).Add(c.PalletDeposit)
			if !c.TotalDeliveryCost.Equal(total) || !c.LandedCost.Equal(c.SubtotalExVat.Add(total)) {
				return false
			}
			want := decimal.Max(decimal.Zero, threshold.Sub(c.SubtotalExVat))
			return c.AmountToFreeDelivery != nil && c.AmountToFreeDelivery.Equal(want)
		},
		gen.IntRange(0, 500),
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 500_000),
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(0, 5_000),
		gen.Int64Range(0, 100_000),
	))

	properties.TestingRun(t)
}
