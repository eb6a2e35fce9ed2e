package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gsindri/kaupa-skil-sub004/api/responses"
	"github.com/gsindri/kaupa-skil-sub004/api/validators"
	"github.com/gsindri/kaupa-skil-sub004/internal/units"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

// EngineProvider hands out the current unit/VAT engine.
type EngineProvider interface {
	Engine(ctx context.Context) (*units.Engine, error)
}

type unitResponse struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	BaseUnit     string          `json:"base_unit,omitempty"`
	Dimension    string          `json:"dimension,omitempty"`
	ToBaseFactor decimal.Decimal `json:"to_base_factor"`
}

// UnitsList returns the unit table grouped by base unit.
func UnitsList(provider EngineProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, ok := loadEngine(w, r, provider, logg)
		if !ok {
			return
		}
		list := engine.Units()
		out := make([]unitResponse, 0, len(list))
		for _, u := range list {
			item := unitResponse{Code: u.Code, Name: u.Name, BaseUnit: u.BaseUnit, ToBaseFactor: u.ToBaseFactor}
			if dim, ok := u.Dimension(); ok {
				item.Dimension = dim.String()
			}
			out = append(out, item)
		}
		responses.WriteSuccess(w, out)
	}
}

type convertRequest struct {
	Value *decimal.Decimal `json:"value" validate:"required"`
	From  string           `json:"from" validate:"required,max=16"`
	To    string           `json:"to" validate:"required,max=16"`
}

type convertResponse struct {
	Value decimal.Decimal `json:"value"`
	From  string          `json:"from"`
	To    string          `json:"to"`
}

func UnitsConvert(provider EngineProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload convertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engine, ok := loadEngine(w, r, provider, logg)
		if !ok {
			return
		}

		value, err := engine.ConvertUnits(*payload.Value, payload.From, payload.To)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, convertResponse{Value: value, From: payload.From, To: payload.To})
	}
}

type pricePerBaseRequest struct {
	PackPrice    *decimal.Decimal `json:"pack_price" validate:"required,dec_gte0"`
	PackSize     string           `json:"pack_size" validate:"required_without=PackUnit,max=64"`
	PackQuantity *decimal.Decimal `json:"pack_quantity" validate:"required_with=PackUnit,omitempty,dec_gt0"`
	PackUnit     string           `json:"pack_unit" validate:"max=16"`
}

type pricePerBaseResponse struct {
	PricePerBaseUnit decimal.Decimal `json:"price_per_base_unit"`
	BaseUnit         string          `json:"base_unit"`
}

// UnitsPricePerBase normalises a pack price to the base unit, from either a
// pack size string ("12x500g") or an explicit quantity and unit.
func UnitsPricePerBase(provider EngineProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload pricePerBaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engine, ok := loadEngine(w, r, provider, logg)
		if !ok {
			return
		}

		var (
			price decimal.Decimal
			base  string
			err   error
		)
		if payload.PackSize != "" {
			price, base, err = engine.PackPricePerBaseUnit(*payload.PackPrice, payload.PackSize)
		} else {
			price, base, err = engine.PricePerBaseUnit(*payload.PackPrice, *payload.PackQuantity, payload.PackUnit)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pricePerBaseResponse{PricePerBaseUnit: price, BaseUnit: base})
	}
}

type vatPriceRequest struct {
	Price       *decimal.Decimal `json:"price" validate:"required,dec_gte0"`
	Rate        *decimal.Decimal `json:"rate" validate:"required_without=Category,omitempty,dec_rate"`
	Category    string           `json:"category" validate:"max=64"`
	IncludesVat bool             `json:"includes_vat"`
}

type vatPriceResponse struct {
	PriceExVat  decimal.Decimal `json:"price_ex_vat"`
	PriceIncVat decimal.Decimal `json:"price_inc_vat"`
	VatAmount   decimal.Decimal `json:"vat_amount"`
	VatRate     decimal.Decimal `json:"vat_rate"`
}

// VatPrice converts a price between ex and inc VAT using an explicit rate or
// the rate of a product category.
func VatPrice(provider EngineProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload vatPriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engine, ok := loadEngine(w, r, provider, logg)
		if !ok {
			return
		}

		rate, err := resolveRate(engine, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := vatPriceResponse{VatRate: rate}
		if payload.IncludesVat {
			resp.PriceIncVat = *payload.Price
			resp.PriceExVat, err = engine.PriceExVat(*payload.Price, rate)
		} else {
			resp.PriceExVat = *payload.Price
			resp.PriceIncVat, err = engine.PriceIncVat(*payload.Price, rate)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp.VatAmount = resp.PriceIncVat.Sub(resp.PriceExVat)
		responses.WriteSuccess(w, resp)
	}
}

func resolveRate(engine *units.Engine, payload vatPriceRequest) (decimal.Decimal, error) {
	if payload.Rate != nil {
		return *payload.Rate, nil
	}
	return engine.VatRate(payload.Category)
}

func loadEngine(w http.ResponseWriter, r *http.Request, provider EngineProvider, logg *logger.Logger) (*units.Engine, bool) {
	if provider == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
		return nil, false
	}
	engine, err := provider.Engine(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return engine, true
}
