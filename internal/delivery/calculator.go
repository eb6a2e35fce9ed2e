package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PalletCounter decides how many pallet deposits a supplier group owes.
type PalletCounter func(items []CartLineItem) int

// CountQualifyingLines counts lines with a positive quantity that are not
// explicitly excluded from pallet handling.
func CountQualifyingLines(items []CartLineItem) int {
	n := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if item.PalletEligible != nil && !*item.PalletEligible {
			continue
		}
		n++
	}
	return n
}

// Calculator computes landed costs. It holds no mutable state.
type Calculator struct {
	now      func() time.Time
	location *time.Location
	pallets  PalletCounter
}

type Option func(*Calculator)

// WithClock injects the time source used for next-delivery-day resolution.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the timezone delivery days and cutoffs are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.location = loc
		}
	}
}

func WithPalletCounter(counter PalletCounter) Option {
	return func(c *Calculator) {
		if counter != nil {
			c.pallets = counter
		}
	}
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		now:      time.Now,
		location: time.UTC,
		pallets:  CountQualifyingLines,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalculateOrderDelivery groups items by supplier and computes one Calculation
// per supplier, ordered by supplier id. Suppliers without an active rule get a
// zero delivery cost.
func (c *Calculator) CalculateOrderDelivery(items []CartLineItem, rules map[uuid.UUID]Rule) []Calculation {
	groups := GroupBySupplier(items)
	out := make([]Calculation, 0, len(groups))
	now := c.now().In(c.location)
	for _, group := range groups {
		var rule *Rule
		if r, ok := rules[group.SupplierID]; ok {
			rule = &r
		}
		out = append(out, c.calculate(group, rule, now))
	}
	return out
}

// CalculateGroup computes the breakdown of a single supplier group.
func (c *Calculator) CalculateGroup(group SupplierGroup, rule *Rule) Calculation {
	return c.calculate(group, rule, c.now().In(c.location))
}

func (c *Calculator) calculate(group SupplierGroup, rule *Rule, now time.Time) Calculation {
	calc := Calculation{
		SupplierID:        group.SupplierID,
		SupplierName:      group.SupplierName,
		SubtotalExVat:     group.SubtotalExVat,
		DeliveryFee:       decimal.Zero,
		FuelSurcharge:     decimal.Zero,
		PalletDeposit:     decimal.Zero,
		TotalDeliveryCost: decimal.Zero,
		LandedCost:        group.SubtotalExVat,
	}
	if rule == nil || !rule.IsActive {
		return calc
	}

	subtotal := group.SubtotalExVat
	if rule.FreeThresholdExVat != nil {
		threshold := *rule.FreeThresholdExVat
		remaining := decimal.Max(decimal.Zero, threshold.Sub(subtotal))
		calc.ThresholdAmount = &threshold
		calc.AmountToFreeDelivery = &remaining
		calc.IsUnderThreshold = subtotal.LessThan(threshold)
	}

	calc.DeliveryFee = rule.Fee(subtotal)
	calc.FuelSurcharge = calc.DeliveryFee.Mul(rule.FuelSurchargePct)
	calc.PalletDeposit = rule.PalletDepositPerUnit.Mul(decimal.NewFromInt(int64(c.pallets(group.Items))))
	calc.TotalDeliveryCost = calc.DeliveryFee.Add(calc.FuelSurcharge).Add(calc.PalletDeposit)
	calc.LandedCost = subtotal.Add(calc.TotalDeliveryCost)
	calc.NextDeliveryDay = rule.NextDeliveryDay(now)
	return calc
}
