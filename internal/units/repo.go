package units

import (
	"context"

	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"gorm.io/gorm"
)

// Repository loads the unit and VAT tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListUnits(ctx context.Context) ([]Unit, error) {
	var rows []models.Unit
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Unit, 0, len(rows))
	for _, row := range rows {
		u := Unit{Code: row.Code, Name: row.Name, ToBaseFactor: row.ToBaseFactor}
		if row.BaseUnit != nil {
			u.BaseUnit = *row.BaseUnit
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *Repository) ListVatRules(ctx context.Context) ([]VatRule, error) {
	var rows []models.VatRule
	if err := r.db.WithContext(ctx).Order("category_code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]VatRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, VatRule{CategoryCode: row.CategoryCode, Rate: row.Rate})
	}
	return out, nil
}
