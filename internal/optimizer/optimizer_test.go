package optimizer

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/internal/suppliers"
	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	supplierA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	supplierB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	supplierC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	productMilk   = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	productCoffee = uuid.MustParse("10000000-0000-0000-0000-000000000002")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func newOptimizer() *Optimizer {
	clock := func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) }
	return New(delivery.NewCalculator(delivery.WithClock(clock)), DefaultPolicy())
}

func item(supplier uuid.UUID, product *uuid.UUID, qty int, price string) delivery.CartLineItem {
	return delivery.CartLineItem{
		SupplierID:       supplier,
		SupplierName:     "Supplier " + supplier.String()[35:],
		SupplierItemID:   "sku-" + supplier.String()[35:],
		CatalogProductID: product,
		Quantity:         qty,
		UnitPriceExVat:   dec(price),
	}
}

func flat(fee string) delivery.Rule {
	return delivery.Rule{FlatFee: dec(fee), IsActive: true}
}

func TestOptimizeOrder_EmptyCart(t *testing.T) {
	got := newOptimizer().OptimizeOrder(nil, nil, nil)

	assert.True(t, got.CurrentTotal.IsZero())
	assert.True(t, got.OptimizedTotal.IsZero())
	assert.True(t, got.Savings.IsZero())
	require.NotNil(t, got.Suggestions)
	require.NotNil(t, got.Warnings)
	assert.Empty(t, got.Suggestions)
	assert.Empty(t, got.Warnings)
}

func TestOptimizeOrder_TopUpIsInformational(t *testing.T) {
	rule := delivery.Rule{
		FlatFee:            dec("1500"),
		FuelSurchargePct:   dec("0.1"),
		FreeThresholdExVat: decPtr("10000"),
		IsActive:           true,
	}
	got := newOptimizer().OptimizeOrder(
		[]delivery.CartLineItem{item(supplierA, nil, 1, "8500")},
		map[uuid.UUID]delivery.Rule{supplierA: rule},
		nil,
	)

	require.Len(t, got.Suggestions, 1)
	s := got.Suggestions[0]
	assert.Equal(t, enums.SuggestionTypeTopUp, s.Type)
	assert.True(t, s.Savings.Equal(dec("1650")))
	assert.Contains(t, s.Description, "1500 kr")
	assert.True(t, got.CurrentTotal.Equal(dec("10150")))
	assert.True(t, got.OptimizedTotal.Equal(got.CurrentTotal), "top-up needs buyer action")
	assert.True(t, got.Savings.IsZero())
}

func TestOptimizeOrder_TopUpNeedsSmallGap(t *testing.T) {
	rule := delivery.Rule{FlatFee: dec("1500"), FreeThresholdExVat: decPtr("10000"), IsActive: true}
	got := newOptimizer().OptimizeOrder(
		[]delivery.CartLineItem{item(supplierA, nil, 1, "8000")},
		map[uuid.UUID]delivery.Rule{supplierA: rule},
		nil,
	)
	assert.Empty(t, got.Suggestions, "2000 to go is more than a fifth of 8000")
}

func TestOptimizeOrder_SingleSupplierNeverConsolidates(t *testing.T) {
	got := newOptimizer().OptimizeOrder(
		[]delivery.CartLineItem{item(supplierA, &productMilk, 1, "100")},
		map[uuid.UUID]delivery.Rule{supplierA: flat("1500")},
		nil,
	)
	for _, s := range got.Suggestions {
		assert.NotEqual(t, enums.SuggestionTypeConsolidate, s.Type)
		assert.NotEqual(t, enums.SuggestionTypeHoldAndMerge, s.Type)
	}
	assert.Empty(t, got.Warnings)
}

func TestOptimizeOrder_ConsolidatesOverlappingProduct(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierA, &productMilk, 2, "1000"),
		item(supplierB, &productMilk, 10, "1100"),
	}
	rules := map[uuid.UUID]delivery.Rule{
		supplierA: flat("1500"),
		supplierB: {FlatFee: dec("1500"), FreeThresholdExVat: decPtr("10000"), IsActive: true},
	}

	got := newOptimizer().OptimizeOrder(items, rules, nil)

	assert.True(t, got.CurrentTotal.Equal(dec("14500")))
	var consolidate *Suggestion
	for i := range got.Suggestions {
		if got.Suggestions[i].Type == enums.SuggestionTypeConsolidate {
			consolidate = &got.Suggestions[i]
		}
	}
	require.NotNil(t, consolidate)
	assert.Equal(t, supplierA, consolidate.SupplierID)
	require.NotNil(t, consolidate.TargetSupplierID)
	assert.Equal(t, supplierB, *consolidate.TargetSupplierID)
	assert.True(t, consolidate.Savings.Equal(dec("1300")), "got %s", consolidate.Savings)
	require.Len(t, consolidate.Items, 1)
	assert.Equal(t, 2, consolidate.Items[0].Quantity)
	assert.True(t, consolidate.Items[0].ToUnitPriceExVat.Equal(dec("1100")))

	assert.True(t, got.OptimizedTotal.Equal(dec("13200")))
	assert.True(t, got.Savings.Equal(dec("1300")))

	assert.Equal(t, 10, items[1].Quantity, "input cart is not mutated")
}

func TestOptimizeOrder_NoSuggestionWhenMoveCostsMore(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierA, &productMilk, 2, "1000"),
		item(supplierB, &productMilk, 1, "1500"),
		item(supplierB, &productCoffee, 10, "2000"),
	}
	rules := map[uuid.UUID]delivery.Rule{supplierA: flat("400")}

	got := newOptimizer().OptimizeOrder(items, rules, nil)

	for _, s := range got.Suggestions {
		assert.NotEqual(t, enums.SuggestionTypeConsolidate, s.Type)
		assert.NotEqual(t, enums.SuggestionTypeHoldAndMerge, s.Type, "overlap exists, so holding is not proposed")
	}
	assert.True(t, got.Savings.IsZero())
	assert.True(t, got.OptimizedTotal.Equal(got.CurrentTotal))
}

func TestOptimizeOrder_HoldAndMergeWithoutOverlap(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierA, &productMilk, 1, "1000"),
		item(supplierB, &productCoffee, 10, "2000"),
	}
	rules := map[uuid.UUID]delivery.Rule{supplierA: flat("800")}

	got := newOptimizer().OptimizeOrder(items, rules, nil)

	require.Len(t, got.Suggestions, 1)
	s := got.Suggestions[0]
	assert.Equal(t, enums.SuggestionTypeHoldAndMerge, s.Type)
	assert.Equal(t, supplierA, s.SupplierID)
	assert.True(t, s.Savings.Equal(dec("800")))
	assert.Contains(t, s.Description, "80%")
	assert.True(t, got.OptimizedTotal.Equal(got.CurrentTotal))
}

func TestOptimizeOrder_MutualOverlapConsolidatesOnce(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierB, &productMilk, 1, "1000"),
		item(supplierA, &productMilk, 1, "1000"),
	}
	rules := map[uuid.UUID]delivery.Rule{supplierA: flat("1500"), supplierB: flat("1500")}

	got := newOptimizer().OptimizeOrder(items, rules, nil)

	var consolidations []Suggestion
	for _, s := range got.Suggestions {
		if s.Type == enums.SuggestionTypeConsolidate {
			consolidations = append(consolidations, s)
		}
	}
	require.Len(t, consolidations, 1)
	assert.Equal(t, supplierA, consolidations[0].SupplierID)
	assert.Equal(t, supplierB, *consolidations[0].TargetSupplierID)
	assert.True(t, got.CurrentTotal.Equal(dec("5000")))
	assert.True(t, got.OptimizedTotal.Equal(dec("3500")))
}

func TestOptimizeOrder_PicksCheapestTarget(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierA, &productMilk, 1, "500"),
		item(supplierB, &productMilk, 5, "700"),
		item(supplierC, &productMilk, 5, "600"),
	}
	rules := map[uuid.UUID]delivery.Rule{supplierA: flat("1000")}

	got := newOptimizer().OptimizeOrder(items, rules, nil)

	require.NotEmpty(t, got.Suggestions)
	s := got.Suggestions[0]
	require.Equal(t, enums.SuggestionTypeConsolidate, s.Type)
	assert.Equal(t, supplierC, *s.TargetSupplierID)
	assert.True(t, s.Savings.Equal(dec("900")), "got %s", s.Savings)
}

func TestOptimizeOrder_Warnings(t *testing.T) {
	minValue := dec("15000")
	minQty := 12
	profiles := map[uuid.UUID]suppliers.Profile{
		supplierA: {SupplierID: supplierA, Name: "Ný Heildsala", HasOrderHistory: false},
		supplierB: {SupplierID: supplierB, Name: "Gamla Heildsalan", HasOrderHistory: true, MinOrderValueExVat: &minValue, MinOrderQuantity: &minQty},
	}
	items := []delivery.CartLineItem{
		item(supplierA, nil, 1, "2000"),
		item(supplierB, nil, 4, "2000"),
		item(supplierC, nil, 1, "100"),
	}
	items[0].SupplierName = ""
	rules := map[uuid.UUID]delivery.Rule{
		supplierA: {FlatFee: dec("1500"), FreeThresholdExVat: decPtr("20000"), IsActive: true},
		supplierB: flat("500"),
	}

	got := newOptimizer().OptimizeOrder(items, rules, profiles)

	types := make([]string, 0, len(got.Warnings))
	for _, w := range got.Warnings {
		types = append(types, w.SupplierID.String()[35:]+":"+w.Type.String())
	}
	assert.Equal(t, []string{
		"a:new_supplier_fee",
		"a:inefficient_split",
		"b:under_moq",
	}, types)

	assert.Equal(t, "Ný Heildsala", got.Warnings[0].SupplierName, "profile name fills a missing cart name")
	assert.True(t, got.Warnings[0].CostImpact.Equal(dec("1500")))
	assert.True(t, got.Warnings[1].CostImpact.Equal(dec("1500")))
	assert.True(t, got.Warnings[2].CostImpact.IsZero())
	assert.Contains(t, got.Warnings[2].Message, "15000 kr")
	assert.Contains(t, got.Warnings[2].Message, "at least 12 units")
}

func TestOptimizeOrder_SupplierWithoutProfileRowIsNew(t *testing.T) {
	items := []delivery.CartLineItem{item(supplierA, nil, 1, "8000")}
	rules := map[uuid.UUID]delivery.Rule{supplierA: flat("1500")}

	got := newOptimizer().OptimizeOrder(items, rules, map[uuid.UUID]suppliers.Profile{})
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, enums.DeliveryWarningTypeNewSupplierFee, got.Warnings[0].Type)
	assert.True(t, got.Warnings[0].CostImpact.Equal(dec("1500")))

	unloaded := newOptimizer().OptimizeOrder(items, rules, nil)
	assert.Empty(t, unloaded.Warnings, "profiles that failed to load skip profile warnings")
}

func TestOptimizeOrder_NoInefficientSplitNearThreshold(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierA, nil, 1, "6000"),
		item(supplierB, nil, 1, "100"),
	}
	rules := map[uuid.UUID]delivery.Rule{
		supplierA: {FlatFee: dec("1500"), FreeThresholdExVat: decPtr("10000"), IsActive: true},
	}

	got := newOptimizer().OptimizeOrder(items, rules, nil)
	for _, w := range got.Warnings {
		assert.NotEqual(t, enums.DeliveryWarningTypeInefficientSplit, w.Type, "6000 is above half of the 10000 threshold")
	}
}

func TestOptimizeOrder_OrderIndependent(t *testing.T) {
	items := []delivery.CartLineItem{
		item(supplierC, nil, 1, "100"),
		item(supplierA, nil, 1, "100"),
		item(supplierB, nil, 1, "100"),
	}
	reversed := []delivery.CartLineItem{items[2], items[1], items[0]}
	rules := map[uuid.UUID]delivery.Rule{supplierA: flat("100"), supplierB: flat("100"), supplierC: flat("100")}
	opt := newOptimizer()

	first := opt.OptimizeOrder(items, rules, nil)
	second := opt.OptimizeOrder(reversed, rules, nil)
	assert.Equal(t, first.Suggestions, second.Suggestions)
	assert.Equal(t, first.Warnings, second.Warnings)
	for i := 1; i < len(first.Suggestions); i++ {
		assert.True(t, delivery.CompareSupplierIDs(first.Suggestions[i-1].SupplierID, first.Suggestions[i].SupplierID) <= 0)
	}
}

func TestOptimizeOrder_NeverNegativeSavingsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	opt := newOptimizer()

	ids := []uuid.UUID{supplierA, supplierB, supplierC}
	products := []*uuid.UUID{nil, &productMilk, &productCoffee, &productMilk}

	properties.Property("savings are non-negative and never raise the total", prop.ForAll(
		func(owners, picks, qtys []int, prices, fees, thresholds []int64) bool {
			if len(fees) < len(ids) || len(thresholds) < len(ids) {
				return true
			}
			n := min(len(owners), len(picks), len(qtys), len(prices))
			items := make([]delivery.CartLineItem, n)
			for i := range n {
				items[i] = delivery.CartLineItem{
					SupplierID:       ids[owners[i]],
					SupplierItemID:   fmt.Sprintf("sku-%d", i),
					CatalogProductID: products[picks[i]],
					Quantity:         qtys[i],
					UnitPriceExVat:   decimal.New(prices[i], 0),
				}
			}
			rules := make(map[uuid.UUID]delivery.Rule, len(ids))
			for i, id := range ids {
				rule := delivery.Rule{FlatFee: decimal.New(fees[i], 0), IsActive: true}
				if thresholds[i] > 0 {
					threshold := decimal.New(thresholds[i], 0)
					rule.FreeThresholdExVat = &threshold
				}
				rules[id] = rule
			}

			got := opt.OptimizeOrder(items, rules, nil)
			for _, sug := range got.Suggestions {
				if sug.Savings.Sign() < 0 {
					return false
				}
			}
			return got.Savings.Sign() >= 0 &&
				got.OptimizedTotal.LessThanOrEqual(got.CurrentTotal) &&
				got.CurrentTotal.Sub(got.OptimizedTotal).Equal(got.Savings)
		},
		gen.SliceOfN(6, gen.IntRange(0, 2)),
		gen.SliceOfN(6, gen.IntRange(0, 3)),
		gen.SliceOfN(6, gen.IntRange(0, 20)),
		gen.SliceOfN(6, gen.Int64Range(1, 20_000)),
		gen.SliceOfN(3, gen.Int64Range(0, 5_000)),
		gen.SliceOfN(3, gen.Int64Range(0, 100_000)),
	))

	properties.TestingRun(t)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.OptimizerConfig{TopUpMaxShare: 0.2, FeeShareThreshold: 0.15, InefficientThresholdShare: 0.5})
	d := DefaultPolicy()
	assert.True(t, p.TopUpMaxShare.Equal(d.TopUpMaxShare))
	assert.True(t, p.FeeShareThreshold.Equal(d.FeeShareThreshold))
	assert.True(t, p.InefficientThresholdShare.Equal(d.InefficientThresholdShare))
}
