package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a unit-of-measure row. A nil BaseUnit marks a unit that converts to nothing.
type Unit struct {
	Code         string          `gorm:"column:code;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	BaseUnit     *string         `gorm:"column:base_unit"`
	ToBaseFactor decimal.Decimal `gorm:"column:to_base_factor;type:numeric(20,10);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Unit) TableName() string { return "units" }
