package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VatRule maps a product category to its VAT rate fraction.
type VatRule struct {
	CategoryCode string          `gorm:"column:category_code;primaryKey"`
	Rate         decimal.Decimal `gorm:"column:rate;type:numeric(5,4);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (VatRule) TableName() string { return "vat_rules" }
