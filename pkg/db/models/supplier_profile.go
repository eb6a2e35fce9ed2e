package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierProfile stores the buyer-facing facts the optimizer needs about a supplier.
type SupplierProfile struct {
	SupplierID         uuid.UUID           `gorm:"column:supplier_id;type:uuid;primaryKey"`
	Name               string              `gorm:"column:name;not null"`
	HasOrderHistory    bool                `gorm:"column:has_order_history;not null;default:false"`
	MinOrderValueExVat decimal.NullDecimal `gorm:"column:min_order_value_ex_vat;type:numeric(14,2)"`
	MinOrderQuantity   *int                `gorm:"column:min_order_quantity"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (SupplierProfile) TableName() string { return "supplier_profiles" }
