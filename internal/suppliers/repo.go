package suppliers

import (
	"context"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads supplier profile rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Profiles loads the profiles that exist for the given suppliers.
func (r *Repository) Profiles(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]Profile, error) {
	out := make(map[uuid.UUID]Profile, len(supplierIDs))
	if len(supplierIDs) == 0 {
		return out, nil
	}
	var rows []models.SupplierProfile
	if err := r.db.WithContext(ctx).Where("supplier_id IN ?", supplierIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SupplierID] = FromModel(row)
	}
	return out, nil
}

// MarkOrdered records that the buyer has ordered from the supplier before. A
// missing profile row is created.
func (r *Repository) MarkOrdered(ctx context.Context, supplierID uuid.UUID) error {
	updated, err := r.setOrderHistory(ctx, supplierID)
	if err != nil || updated > 0 {
		return err
	}

	err = r.db.WithContext(ctx).Create(&models.SupplierProfile{SupplierID: supplierID, HasOrderHistory: true}).Error
	if db.IsUniqueViolation(err, "") {
		_, err = r.setOrderHistory(ctx, supplierID)
	}
	return err
}

func (r *Repository) setOrderHistory(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.SupplierProfile{}).
		Where("supplier_id = ?", supplierID).
		Update("has_order_history", true)
	return res.RowsAffected, res.Error
}
