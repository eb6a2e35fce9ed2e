package delivery

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TierFee returns the fee of the last tier (ascending by threshold) the
// subtotal has reached. It reports false when no tier qualifies.
func TierFee(tiers []Tier, subtotal decimal.Decimal) (decimal.Decimal, bool) {
	if len(tiers) == 0 {
		return decimal.Zero, false
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold.LessThan(sorted[j].Threshold)
	})

	fee, found := decimal.Zero, false
	for _, tier := range sorted {
		if tier.Threshold.GreaterThan(subtotal) {
			break
		}
		fee, found = tier.Fee, true
	}
	return fee, found
}

// Fee selects the delivery fee for a subtotal: tiers first, the flat fee when
// no tier qualifies, and zero once the free threshold is reached.
func (r Rule) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if r.FreeThresholdExVat != nil && subtotal.GreaterThanOrEqual(*r.FreeThresholdExVat) {
		return decimal.Zero
	}
	if fee, ok := TierFee(r.Tiers, subtotal); ok {
		return fee
	}
	return r.FlatFee
}
