package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads and writes delivery rule rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ActiveRules returns the most recently updated active row per supplier.
// Suppliers without an active row are absent from the map.
func (r *Repository) ActiveRules(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]models.DeliveryRule, error) {
	out := make(map[uuid.UUID]models.DeliveryRule, len(supplierIDs))
	if len(supplierIDs) == 0 {
		return out, nil
	}
	var rows []models.DeliveryRule
	if err := r.db.WithContext(ctx).
		Where("supplier_id IN ? AND is_active = ?", supplierIDs, true).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, seen := out[row.SupplierID]; seen {
			continue
		}
		out[row.SupplierID] = row
	}
	return out, nil
}

// Create inserts a new rule row.
func (r *Repository) Create(ctx context.Context, row *models.DeliveryRule) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// DeactivateZone turns off the supplier's active rules in zone and reports how
// many rows changed.
func (r *Repository) DeactivateZone(ctx context.Context, supplierID uuid.UUID, zone string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliveryRule{}).
		Where("supplier_id = ? AND zone = ? AND is_active = ?", supplierID, zone, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// Save inserts or updates a rule row.
func (r *Repository) Save(ctx context.Context, row *models.DeliveryRule) error {
	return r.db.WithContext(ctx).Save(row).Error
}
