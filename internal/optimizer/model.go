package optimizer

import (
	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/pkg/enums"
	"github.com/shopspring/decimal"
)

// MovedItem is a cart line a consolidation shifts to another supplier.
type MovedItem struct {
	SupplierItemID     string          `json:"supplier_item_id"`
	CatalogProductID   uuid.UUID       `json:"catalog_product_id"`
	ItemName           string          `json:"item_name,omitempty"`
	Quantity           int             `json:"quantity"`
	FromUnitPriceExVat decimal.Decimal `json:"from_unit_price_ex_vat"`
	ToUnitPriceExVat   decimal.Decimal `json:"to_unit_price_ex_vat"`
}

type Suggestion struct {
	Type               enums.SuggestionType `json:"type"`
	SupplierID         uuid.UUID            `json:"supplier_id"`
	SupplierName       string               `json:"supplier_name"`
	Description        string               `json:"description"`
	Savings            decimal.Decimal      `json:"savings"`
	Items              []MovedItem          `json:"items,omitempty"`
	TargetSupplierID   *uuid.UUID           `json:"target_supplier_id,omitempty"`
	TargetSupplierName string               `json:"target_supplier_name,omitempty"`
}

type Warning struct {
	Type         enums.DeliveryWarningType `json:"type"`
	SupplierID   uuid.UUID                 `json:"supplier_id"`
	SupplierName string                    `json:"supplier_name"`
	Message      string                    `json:"message"`
	CostImpact   decimal.Decimal           `json:"cost_impact"`
}

// Optimization is the result of a suggestion pass over one cart.
type Optimization struct {
	CurrentTotal   decimal.Decimal        `json:"current_total"`
	OptimizedTotal decimal.Decimal        `json:"optimized_total"`
	Savings        decimal.Decimal        `json:"savings"`
	Suggestions    []Suggestion           `json:"suggestions"`
	Warnings       []Warning              `json:"warnings"`
	Calculations   []delivery.Calculation `json:"calculations"`
}
