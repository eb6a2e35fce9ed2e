package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gsindri/kaupa-skil-sub004/api/responses"
	"github.com/gsindri/kaupa-skil-sub004/api/validators"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/internal/quote"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

// DeliveryCalculate returns the landed-cost breakdown per supplier.
func DeliveryCalculate(svc quote.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := payload.logContext(r, logg)
		calcs, err := svc.Calculate(ctx, payload.toItems())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, calcs)
	}
}

// DeliveryOptimize returns the landed cost plus suggestions and warnings.
func DeliveryOptimize(svc quote.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload cartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := payload.logContext(r, logg)
		result, err := svc.Optimize(ctx, payload.toItems())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type cartRequest struct {
	CartID string            `json:"cart_id" validate:"max=128"`
	Items  []cartItemPayload `json:"items" validate:"max=1000,dive"`
}

type cartItemPayload struct {
	SupplierID       uuid.UUID        `json:"supplier_id" validate:"uuid_set"`
	SupplierName     string           `json:"supplier_name" validate:"max=255"`
	SupplierItemID   string           `json:"supplier_item_id" validate:"max=128"`
	CatalogProductID *uuid.UUID       `json:"catalog_product_id"`
	ItemName         string           `json:"item_name" validate:"max=255"`
	CategoryCode     string           `json:"category_code" validate:"max=64"`
	Quantity         int              `json:"quantity" validate:"min=0"`
	PackPrice        *decimal.Decimal `json:"pack_price" validate:"omitempty,dec_gte0"`
	PackSize         string           `json:"pack_size" validate:"max=64"`
	UnitPriceExVat   *decimal.Decimal `json:"unit_price_ex_vat" validate:"required_without=UnitPriceIncVat,omitempty,dec_gte0"`
	UnitPriceIncVat  *decimal.Decimal `json:"unit_price_inc_vat" validate:"omitempty,dec_gte0"`
	VatRate          *decimal.Decimal `json:"vat_rate" validate:"omitempty,dec_rate"`
	PalletEligible   *bool            `json:"pallet_eligible"`
}

func (c cartRequest) logContext(r *http.Request, logg *logger.Logger) context.Context {
	ctx := r.Context()
	if logg != nil && c.CartID != "" {
		ctx = logg.WithCartID(ctx, c.CartID)
	}
	return ctx
}

func (c cartRequest) toItems() []delivery.CartLineItem {
	items := make([]delivery.CartLineItem, 0, len(c.Items))
	for _, p := range c.Items {
		items = append(items, delivery.CartLineItem{
			SupplierID:       p.SupplierID,
			SupplierName:     validators.SanitizeString(p.SupplierName, 255),
			SupplierItemID:   validators.SanitizeString(p.SupplierItemID, 128),
			CatalogProductID: p.CatalogProductID,
			ItemName:         validators.SanitizeString(p.ItemName, 255),
			CategoryCode:     validators.SanitizeString(p.CategoryCode, 64),
			Quantity:         p.Quantity,
			PackPrice:        decimalOrZero(p.PackPrice),
			PackSize:         validators.SanitizeString(p.PackSize, 64),
			UnitPriceExVat:   decimalOrZero(p.UnitPriceExVat),
			UnitPriceIncVat:  decimalOrZero(p.UnitPriceIncVat),
			VatRate:          p.VatRate,
			PalletEligible:   p.PalletEligible,
		})
	}
	return items
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
