package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeliveryRule is the persisted delivery configuration for one supplier zone.
type DeliveryRule struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID           uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index"`
	Zone                 string              `gorm:"column:zone;not null;default:'default'"`
	FreeThresholdExVat   decimal.NullDecimal `gorm:"column:free_threshold_ex_vat;type:numeric(14,2)"`
	FlatFee              decimal.Decimal     `gorm:"column:flat_fee;type:numeric(14,2);not null;default:0"`
	FuelSurchargePct     decimal.Decimal     `gorm:"column:fuel_surcharge_pct;type:numeric(6,4);not null;default:0"`
	PalletDepositPerUnit decimal.Decimal     `gorm:"column:pallet_deposit_per_unit;type:numeric(14,2);not null;default:0"`
	CutoffTime           *string             `gorm:"column:cutoff_time"`
	DeliveryDays         types.Weekdays      `gorm:"column:delivery_days;type:jsonb;not null"`
	Tiers                types.FeeTiers      `gorm:"column:tiers;type:jsonb;not null"`
	IsActive             bool                `gorm:"column:is_active;not null"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliveryRule) TableName() string { return "delivery_rules" }

// BeforeCreate assigns an id when the caller left it empty.
func (r *DeliveryRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
