package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gsindri/kaupa-skil-sub004/api/responses"
	"github.com/gsindri/kaupa-skil-sub004/api/validators"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/types"
)

// RuleReplacer stores a supplier's active delivery rule.
type RuleReplacer interface {
	Replace(ctx context.Context, row models.DeliveryRule) (delivery.Rule, error)
}

// OrderHistoryRecorder marks that the buyer has ordered from a supplier.
type OrderHistoryRecorder interface {
	MarkOrdered(ctx context.Context, supplierID uuid.UUID) error
}

type deliveryRuleRequest struct {
	Zone                 string           `json:"zone" validate:"max=64"`
	FreeThresholdExVat   *decimal.Decimal `json:"free_threshold_ex_vat" validate:"omitempty,dec_gte0"`
	FlatFee              *decimal.Decimal `json:"flat_fee" validate:"required"`
	FuelSurchargePct     *decimal.Decimal `json:"fuel_surcharge_pct" validate:"omitempty,dec_gte0"`
	PalletDepositPerUnit *decimal.Decimal `json:"pallet_deposit_per_unit"`
	CutoffTime           string           `json:"cutoff_time" validate:"max=8"`
	DeliveryDays         []int            `json:"delivery_days" validate:"max=7,dive,min=0,max=6"`
	Tiers                []feeTierPayload `json:"tiers" validate:"max=50,dive"`
}

type feeTierPayload struct {
	Threshold *decimal.Decimal `json:"threshold" validate:"required,dec_gte0"`
	Fee       *decimal.Decimal `json:"fee" validate:"required"`
}

func (p deliveryRuleRequest) toModel(supplierID uuid.UUID) models.DeliveryRule {
	row := models.DeliveryRule{
		SupplierID:           supplierID,
		Zone:                 validators.SanitizeString(p.Zone, 64),
		FlatFee:              decimalOrZero(p.FlatFee),
		FuelSurchargePct:     decimalOrZero(p.FuelSurchargePct),
		PalletDepositPerUnit: decimalOrZero(p.PalletDepositPerUnit),
		DeliveryDays:         types.Weekdays(p.DeliveryDays),
		Tiers:                make(types.FeeTiers, 0, len(p.Tiers)),
	}
	if p.FreeThresholdExVat != nil {
		row.FreeThresholdExVat = decimal.NewNullDecimal(*p.FreeThresholdExVat)
	}
	if cutoff := strings.TrimSpace(p.CutoffTime); cutoff != "" {
		row.CutoffTime = &cutoff
	}
	for _, tier := range p.Tiers {
		row.Tiers = append(row.Tiers, types.FeeTier{Threshold: decimalOrZero(tier.Threshold), Fee: decimalOrZero(tier.Fee)})
	}
	return row
}

type deliveryRuleResponse struct {
	ID                   uuid.UUID        `json:"id"`
	SupplierID           uuid.UUID        `json:"supplier_id"`
	Zone                 string           `json:"zone"`
	FreeThresholdExVat   *decimal.Decimal `json:"free_threshold_ex_vat"`
	FlatFee              decimal.Decimal  `json:"flat_fee"`
	FuelSurchargePct     decimal.Decimal  `json:"fuel_surcharge_pct"`
	PalletDepositPerUnit decimal.Decimal  `json:"pallet_deposit_per_unit"`
	CutoffTime           string           `json:"cutoff_time,omitempty"`
	DeliveryDays         []int            `json:"delivery_days"`
	Tiers                []types.FeeTier  `json:"tiers"`
	IsActive             bool             `json:"is_active"`
}

func newDeliveryRuleResponse(rule delivery.Rule) deliveryRuleResponse {
	out := deliveryRuleResponse{
		ID:                   rule.ID,
		SupplierID:           rule.SupplierID,
		Zone:                 rule.Zone,
		FreeThresholdExVat:   rule.FreeThresholdExVat,
		FlatFee:              rule.FlatFee,
		FuelSurchargePct:     rule.FuelSurchargePct,
		PalletDepositPerUnit: rule.PalletDepositPerUnit,
		DeliveryDays:         make([]int, 0, len(rule.DeliveryDays)),
		Tiers:                make([]types.FeeTier, 0, len(rule.Tiers)),
		IsActive:             rule.IsActive,
	}
	if rule.CutoffTime != nil {
		out.CutoffTime = rule.CutoffTime.String()
	}
	for _, day := range rule.DeliveryDays {
		out.DeliveryDays = append(out.DeliveryDays, int(day))
	}
	for _, tier := range rule.Tiers {
		out.Tiers = append(out.Tiers, types.FeeTier{Threshold: tier.Threshold, Fee: tier.Fee})
	}
	return out
}

// DeliveryRuleReplace makes the request body the supplier's active rule for its zone.
func DeliveryRuleReplace(admin RuleReplacer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if admin == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery rule admin unavailable"))
			return
		}

		supplierID, err := supplierIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSupplierID(ctx, supplierID.String())
		}

		var payload deliveryRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rule, err := admin.Replace(ctx, payload.toModel(supplierID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "rule_id", rule.ID.String()), "delivery rule replaced")
		}

		responses.WriteSuccess(w, newDeliveryRuleResponse(rule))
	}
}

// SupplierMarkOrdered records the buyer's order history with a supplier.
func SupplierMarkOrdered(history OrderHistoryRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order history unavailable"))
			return
		}

		supplierID, err := supplierIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := history.MarkOrdered(r.Context(), supplierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"supplier_id":       supplierID,
			"has_order_history": true,
		})
	}
}

func supplierIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "supplierId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}
	return id, nil
}
