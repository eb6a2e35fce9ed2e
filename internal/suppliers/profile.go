package suppliers

import (
	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Profile is what the optimizer knows about a supplier beyond its delivery rule.
type Profile struct {
	SupplierID         uuid.UUID        `json:"supplier_id"`
	Name               string           `json:"name"`
	HasOrderHistory    bool             `json:"has_order_history"`
	MinOrderValueExVat *decimal.Decimal `json:"min_order_value_ex_vat,omitempty"`
	MinOrderQuantity   *int             `json:"min_order_quantity,omitempty"`
}

// FromModel maps a persisted row into a Profile.
func FromModel(row models.SupplierProfile) Profile {
	p := Profile{
		SupplierID:       row.SupplierID,
		Name:             row.Name,
		HasOrderHistory:  row.HasOrderHistory,
		MinOrderQuantity: row.MinOrderQuantity,
	}
	if row.MinOrderValueExVat.Valid {
		v := row.MinOrderValueExVat.Decimal
		p.MinOrderValueExVat = &v
	}
	return p
}
