package optimizer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func formatKr(amount decimal.Decimal) string {
	return amount.Round(0).String() + " kr"
}

// topUps suggests adding goods where a small top-up unlocks free delivery.
// Savings are the fee and fuel surcharge that free delivery removes.
func (o *Optimizer) topUps(calcs []delivery.Calculation, names map[uuid.UUID]string) []Suggestion {
	var out []Suggestion
	for _, c := range calcs {
		if !c.IsUnderThreshold || c.AmountToFreeDelivery == nil {
			continue
		}
		limit := c.SubtotalExVat.Mul(o.policy.TopUpMaxShare)
		if c.AmountToFreeDelivery.GreaterThan(limit) {
			continue
		}
		saved := c.DeliveryFee.Add(c.FuelSurcharge)
		if saved.Sign() <= 0 {
			continue
		}
		out = append(out, Suggestion{
			Type:         enums.SuggestionTypeTopUp,
			SupplierID:   c.SupplierID,
			SupplierName: names[c.SupplierID],
			Description: fmt.Sprintf("Add %s ex VAT from %s to unlock free delivery and save %s",
				formatKr(*c.AmountToFreeDelivery), displayName(names, c.SupplierID), formatKr(saved)),
			Savings: saved,
		})
	}
	return out
}

type move struct {
	target  uuid.UUID
	items   []MovedItem
	next    []delivery.CartLineItem
	total   decimal.Decimal
	savings decimal.Decimal
}

// consolidations walks suppliers with a disproportionate delivery share in id
// order. Each one either moves its overlapping catalog products to the supplier
// that lowers the landed total the most, or, with no overlap anywhere, gets an
// informational hold-and-merge suggestion. Moves are applied cumulatively, so
// the returned savings sum to the drop in total landed cost.
func (o *Optimizer) consolidations(
	items []delivery.CartLineItem,
	rules map[uuid.UUID]delivery.Rule,
	calcs []delivery.Calculation,
	names map[uuid.UUID]string,
	current decimal.Decimal,
) ([]Suggestion, decimal.Decimal) {
	accepted := decimal.Zero
	if len(calcs) < 2 {
		return nil, accepted
	}

	offered := offeredProducts(items)
	working := append([]delivery.CartLineItem(nil), items...)
	workingTotal := current
	sources := make(map[uuid.UUID]bool)
	targets := make(map[uuid.UUID]bool)

	var out []Suggestion
	for _, c := range calcs {
		if !o.disproportionate(c) || targets[c.SupplierID] {
			continue
		}

		if !overlapsAnywhere(items, c.SupplierID, offered) {
			share, _ := c.DeliveryShare()
			out = append(out, Suggestion{
				Type:         enums.SuggestionTypeHoldAndMerge,
				SupplierID:   c.SupplierID,
				SupplierName: names[c.SupplierID],
				Description:  holdDescription(names, c, share),
				Savings:      decimal.Max(decimal.Zero, c.TotalDeliveryCost),
			})
			continue
		}

		var best *move
		for _, t := range calcs {
			if t.SupplierID == c.SupplierID || sources[t.SupplierID] {
				continue
			}
			moved, next := reassign(working, c.SupplierID, t.SupplierID)
			if len(moved) == 0 {
				continue
			}
			total := landedTotal(o.calc.CalculateOrderDelivery(next, rules))
			savings := workingTotal.Sub(total)
			if savings.Sign() <= 0 {
				continue
			}
			if best == nil || savings.GreaterThan(best.savings) {
				best = &move{target: t.SupplierID, items: moved, next: next, total: total, savings: savings}
			}
		}
		if best == nil {
			continue
		}

		working = best.next
		workingTotal = best.total
		accepted = accepted.Add(best.savings)
		sources[c.SupplierID] = true
		targets[best.target] = true

		target := best.target
		out = append(out, Suggestion{
			Type:               enums.SuggestionTypeConsolidate,
			SupplierID:         c.SupplierID,
			SupplierName:       names[c.SupplierID],
			Description:        consolidateDescription(names, c.SupplierID, target, best),
			Savings:            best.savings,
			Items:              best.items,
			TargetSupplierID:   &target,
			TargetSupplierName: names[target],
		})
	}
	return out, accepted
}

// offeredProducts indexes which suppliers carry each catalog product in the cart.
func offeredProducts(items []delivery.CartLineItem) map[uuid.UUID]map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for _, item := range items {
		if item.CatalogProductID == nil {
			continue
		}
		set, ok := out[*item.CatalogProductID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			out[*item.CatalogProductID] = set
		}
		set[item.SupplierID] = struct{}{}
	}
	return out
}

func overlapsAnywhere(items []delivery.CartLineItem, supplierID uuid.UUID, offered map[uuid.UUID]map[uuid.UUID]struct{}) bool {
	for _, item := range items {
		if item.SupplierID != supplierID || item.CatalogProductID == nil || item.Quantity <= 0 {
			continue
		}
		if len(offered[*item.CatalogProductID]) > 1 {
			return true
		}
	}
	return false
}

// reassign returns a copy of items where every line of from whose catalog
// product the target also carries is merged into the target's cheapest line
// for that product.
func reassign(items []delivery.CartLineItem, from, to uuid.UUID) ([]MovedItem, []delivery.CartLineItem) {
	targetLine := make(map[uuid.UUID]int)
	for i, item := range items {
		if item.SupplierID != to || item.CatalogProductID == nil {
			continue
		}
		if j, ok := targetLine[*item.CatalogProductID]; ok && !item.UnitPriceExVat.LessThan(items[j].UnitPriceExVat) {
			continue
		}
		targetLine[*item.CatalogProductID] = i
	}
	if len(targetLine) == 0 {
		return nil, nil
	}

	next := append([]delivery.CartLineItem(nil), items...)
	drop := make(map[int]bool)
	var moved []MovedItem
	for i, item := range items {
		if item.SupplierID != from || item.CatalogProductID == nil || item.Quantity <= 0 {
			continue
		}
		j, ok := targetLine[*item.CatalogProductID]
		if !ok {
			continue
		}
		next[j].Quantity += item.Quantity
		drop[i] = true
		moved = append(moved, MovedItem{
			SupplierItemID:     item.SupplierItemID,
			CatalogProductID:   *item.CatalogProductID,
			ItemName:           item.ItemName,
			Quantity:           item.Quantity,
			FromUnitPriceExVat: item.UnitPriceExVat,
			ToUnitPriceExVat:   items[j].UnitPriceExVat,
		})
	}
	if len(moved) == 0 {
		return nil, nil
	}

	out := next[:0:0]
	for i, item := range next {
		if !drop[i] {
			out = append(out, item)
		}
	}
	return moved, out
}

func displayName(names map[uuid.UUID]string, id uuid.UUID) string {
	if name := names[id]; name != "" {
		return name
	}
	return "supplier " + id.String()
}

func holdDescription(names map[uuid.UUID]string, c delivery.Calculation, share decimal.Decimal) string {
	if c.SubtotalExVat.Sign() <= 0 {
		return fmt.Sprintf("Delivery from %s costs %s on an empty order; hold these items and merge them into a larger order",
			displayName(names, c.SupplierID), formatKr(c.TotalDeliveryCost))
	}
	return fmt.Sprintf("Delivery is %s%% of the %s order; hold these items and merge them into a larger order",
		share.Mul(hundred).Round(0).String(), displayName(names, c.SupplierID))
}

func consolidateDescription(names map[uuid.UUID]string, from, to uuid.UUID, m *move) string {
	units := 0
	for _, item := range m.items {
		units += item.Quantity
	}
	return fmt.Sprintf("Order %d unit(s) from %s instead of %s to save %s",
		units, displayName(names, to), displayName(names, from), formatKr(m.savings))
}
