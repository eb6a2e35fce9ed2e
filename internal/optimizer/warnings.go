package optimizer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/internal/suppliers"
	"github.com/gsindri/kaupa-skil-sub004/pkg/enums"
	"github.com/shopspring/decimal"
)

func (o *Optimizer) warnings(
	calcs []delivery.Calculation,
	groups []delivery.SupplierGroup,
	profiles map[uuid.UUID]suppliers.Profile,
	names map[uuid.UUID]string,
) []Warning {
	quantities := make(map[uuid.UUID]int, len(groups))
	for _, g := range groups {
		quantities[g.SupplierID] = g.Quantity
	}

	active := 0
	for _, c := range calcs {
		if c.SubtotalExVat.Sign() > 0 {
			active++
		}
	}

	// A nil map means profiles could not be loaded. In a loaded map a missing
	// row means the buyer has never ordered from that supplier.
	loaded := profiles != nil

	out := []Warning{}
	for _, c := range calcs {
		profile, known := profiles[c.SupplierID]
		name := displayName(names, c.SupplierID)

		if loaded && !profile.HasOrderHistory && c.TotalDeliveryCost.Sign() > 0 {
			out = append(out, Warning{
				Type:         enums.DeliveryWarningTypeNewSupplierFee,
				SupplierID:   c.SupplierID,
				SupplierName: names[c.SupplierID],
				Message:      fmt.Sprintf("First order from %s adds %s in delivery costs", name, formatKr(c.TotalDeliveryCost)),
				CostImpact:   c.TotalDeliveryCost,
			})
		}

		if active >= 2 && o.disproportionate(c) && o.farBelowThreshold(c) {
			out = append(out, Warning{
				Type:         enums.DeliveryWarningTypeInefficientSplit,
				SupplierID:   c.SupplierID,
				SupplierName: names[c.SupplierID],
				Message:      fmt.Sprintf("The %s share of this order is small; its %s delivery cost outweighs the split", name, formatKr(c.TotalDeliveryCost)),
				CostImpact:   c.TotalDeliveryCost,
			})
		}

		if known {
			if msg := moqShortfall(profile, c.SubtotalExVat, quantities[c.SupplierID]); msg != "" {
				out = append(out, Warning{
					Type:         enums.DeliveryWarningTypeUnderMOQ,
					SupplierID:   c.SupplierID,
					SupplierName: names[c.SupplierID],
					Message:      fmt.Sprintf("%s requires %s", name, msg),
					CostImpact:   decimal.Zero,
				})
			}
		}
	}
	return out
}

// farBelowThreshold reports whether the subtotal is under the configured share
// of the free threshold. Without a threshold free delivery is unreachable.
func (o *Optimizer) farBelowThreshold(c delivery.Calculation) bool {
	if c.ThresholdAmount == nil {
		return true
	}
	return c.SubtotalExVat.LessThan(c.ThresholdAmount.Mul(o.policy.InefficientThresholdShare))
}

func moqShortfall(p suppliers.Profile, subtotal decimal.Decimal, quantity int) string {
	var parts []string
	if p.MinOrderValueExVat != nil && subtotal.LessThan(*p.MinOrderValueExVat) {
		parts = append(parts, fmt.Sprintf("a minimum order of %s ex VAT (%s short)",
			formatKr(*p.MinOrderValueExVat), formatKr(p.MinOrderValueExVat.Sub(subtotal))))
	}
	if p.MinOrderQuantity != nil && quantity < *p.MinOrderQuantity {
		parts = append(parts, fmt.Sprintf("at least %d units (%d in cart)", *p.MinOrderQuantity, quantity))
	}
	return strings.Join(parts, " and ")
}
