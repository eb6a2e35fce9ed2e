package optimizer

import (
	"sort"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/internal/suppliers"
	"github.com/gsindri/kaupa-skil-sub004/pkg/enums"
	"github.com/shopspring/decimal"
)

// Optimizer runs the heuristic suggestion pass. It never mutates its inputs and
// never suggests a change that raises the landed cost.
type Optimizer struct {
	calc   *delivery.Calculator
	policy Policy
}

// New builds an optimizer. A nil calculator uses delivery defaults.
func New(calc *delivery.Calculator, policy Policy) *Optimizer {
	if calc == nil {
		calc = delivery.NewCalculator()
	}
	return &Optimizer{calc: calc, policy: policy}
}

// Policy returns the heuristics in use.
func (o *Optimizer) Policy() Policy {
	return o.policy
}

// OptimizeOrder computes the current landed cost per supplier and proposes
// top-up, consolidation and hold-and-merge suggestions plus warnings. Only
// consolidations count toward OptimizedTotal; the other suggestions need the
// buyer to act first. A nil profiles map skips the profile-driven warnings;
// a supplier missing from a non-nil map is treated as never ordered from.
func (o *Optimizer) OptimizeOrder(
	items []delivery.CartLineItem,
	rules map[uuid.UUID]delivery.Rule,
	profiles map[uuid.UUID]suppliers.Profile,
) Optimization {
	calcs := o.calc.CalculateOrderDelivery(items, rules)
	result := Optimization{
		CurrentTotal:   decimal.Zero,
		OptimizedTotal: decimal.Zero,
		Savings:        decimal.Zero,
		Suggestions:    []Suggestion{},
		Warnings:       []Warning{},
		Calculations:   calcs,
	}
	if len(calcs) == 0 {
		return result
	}

	names := supplierNames(calcs, profiles)
	for i := range calcs {
		calcs[i].SupplierName = names[calcs[i].SupplierID]
	}

	current := landedTotal(calcs)
	suggestions := o.topUps(calcs, names)
	consolidations, accepted := o.consolidations(items, rules, calcs, names, current)
	suggestions = append(suggestions, consolidations...)
	sortSuggestions(suggestions)

	warnings := o.warnings(calcs, delivery.GroupBySupplier(items), profiles, names)
	sortWarnings(warnings)

	result.CurrentTotal = current
	result.OptimizedTotal = current.Sub(accepted)
	result.Savings = accepted
	result.Suggestions = suggestions
	result.Warnings = warnings
	return result
}

// disproportionate reports whether delivery cost exceeds the fee share of the subtotal.
func (o *Optimizer) disproportionate(c delivery.Calculation) bool {
	if c.TotalDeliveryCost.Sign() <= 0 {
		return false
	}
	share, ok := c.DeliveryShare()
	if !ok {
		return true
	}
	return share.GreaterThan(o.policy.FeeShareThreshold)
}

func landedTotal(calcs []delivery.Calculation) decimal.Decimal {
	total := decimal.Zero
	for _, c := range calcs {
		total = total.Add(c.LandedCost)
	}
	return total
}

func supplierNames(calcs []delivery.Calculation, profiles map[uuid.UUID]suppliers.Profile) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(calcs))
	for _, c := range calcs {
		name := c.SupplierName
		if name == "" {
			if p, ok := profiles[c.SupplierID]; ok {
				name = p.Name
			}
		}
		names[c.SupplierID] = name
	}
	return names
}

var suggestionRank = map[enums.SuggestionType]int{
	enums.SuggestionTypeTopUp:        0,
	enums.SuggestionTypeConsolidate:  1,
	enums.SuggestionTypeHoldAndMerge: 2,
}

var warningRank = map[enums.DeliveryWarningType]int{
	enums.DeliveryWarningTypeNewSupplierFee:   0,
	enums.DeliveryWarningTypeInefficientSplit: 1,
	enums.DeliveryWarningTypeUnderMOQ:         2,
}

func sortSuggestions(list []Suggestion) {
	sort.SliceStable(list, func(i, j int) bool {
		if c := delivery.CompareSupplierIDs(list[i].SupplierID, list[j].SupplierID); c != 0 {
			return c < 0
		}
		return suggestionRank[list[i].Type] < suggestionRank[list[j].Type]
	})
}

func sortWarnings(list []Warning) {
	sort.SliceStable(list, func(i, j int) bool {
		if c := delivery.CompareSupplierIDs(list[i].SupplierID, list[j].SupplierID); c != 0 {
			return c < 0
		}
		return warningRank[list[i].Type] < warningRank[list[j].Type]
	})
}
