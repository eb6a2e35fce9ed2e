package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineItem is one cart line as the calculator sees it. It is never mutated here.
type CartLineItem struct {
	SupplierID       uuid.UUID
	SupplierName     string
	SupplierItemID   string
	CatalogProductID *uuid.UUID
	ItemName         string
	CategoryCode     string
	Quantity         int
	PackPrice        decimal.Decimal
	PackSize         string
	UnitPriceExVat   decimal.Decimal
	UnitPriceIncVat  decimal.Decimal
	// VatRate is nil when the caller did not send one. Nil is unknown, not 0%.
	VatRate *decimal.Decimal
	// PalletEligible excludes the line from the pallet count when explicitly false.
	PalletEligible *bool
}

// LineSubtotalExVat is UnitPriceExVat x Quantity.
func (c CartLineItem) LineSubtotalExVat() decimal.Decimal {
	return c.UnitPriceExVat.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Tier applies Fee once the supplier subtotal reaches Threshold.
type Tier struct {
	Threshold decimal.Decimal
	Fee       decimal.Decimal
}

// ClockTime is a wall-clock cutoff such as 14:00.
type ClockTime struct {
	Hour   int
	Minute int
}

// On returns the cutoff instant on the given day, in that day's location.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

func (c ClockTime) String() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format("15:04")
}

// Rule is a validated supplier delivery rule.
type Rule struct {
	ID                   uuid.UUID
	SupplierID           uuid.UUID
	Zone                 string
	FreeThresholdExVat   *decimal.Decimal
	FlatFee              decimal.Decimal
	FuelSurchargePct     decimal.Decimal
	PalletDepositPerUnit decimal.Decimal
	CutoffTime           *ClockTime
	DeliveryDays         []time.Weekday
	Tiers                []Tier
	IsActive             bool
}

// Calculation is the per-supplier landed cost breakdown.
type Calculation struct {
	SupplierID           uuid.UUID        `json:"supplier_id"`
	SupplierName         string           `json:"supplier_name"`
	SubtotalExVat        decimal.Decimal  `json:"subtotal_ex_vat"`
	DeliveryFee          decimal.Decimal  `json:"delivery_fee"`
	FuelSurcharge        decimal.Decimal  `json:"fuel_surcharge"`
	PalletDeposit        decimal.Decimal  `json:"pallet_deposit"`
	TotalDeliveryCost    decimal.Decimal  `json:"total_delivery_cost"`
	LandedCost           decimal.Decimal  `json:"landed_cost"`
	IsUnderThreshold     bool             `json:"is_under_threshold"`
	ThresholdAmount      *decimal.Decimal `json:"threshold_amount"`
	AmountToFreeDelivery *decimal.Decimal `json:"amount_to_free_delivery"`
	NextDeliveryDay      *time.Time       `json:"next_delivery_day"`
}

// DeliveryShare is TotalDeliveryCost / SubtotalExVat. It reports false when the
// subtotal is not positive.
func (c Calculation) DeliveryShare() (decimal.Decimal, bool) {
	if c.SubtotalExVat.Sign() <= 0 {
		return decimal.Zero, false
	}
	return c.TotalDeliveryCost.Div(c.SubtotalExVat), true
}
