package units

import (
	"fmt"

	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/shopspring/decimal"
)

// ConversionError reports an unknown unit or a conversion across base units.
type ConversionError struct {
	From   string
	To     string
	Reason string
}

func (e *ConversionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("incompatible units: %s: %s", e.From, e.Reason)
	}
	return fmt.Sprintf("incompatible units: %s -> %s: %s", e.From, e.To, e.Reason)
}

// Coded maps the error onto the public CONVERSION_ERROR code.
func (e *ConversionError) Coded() *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeConversion, e, "incompatible units").
		WithDetails(map[string]any{"from": e.From, "to": e.To, "reason": e.Reason})
}

// VatLookupError reports a category without a VAT rule. Callers must treat it
// differently from a 0% rate.
type VatLookupError struct {
	CategoryCode string
}

func (e *VatLookupError) Error() string {
	return fmt.Sprintf("no vat rule for category %q", e.CategoryCode)
}

func (e *VatLookupError) Coded() *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeUnknownVAT, e, "no vat rule for category").
		WithDetails(map[string]any{"category_code": e.CategoryCode})
}

// RateError reports a VAT rate outside [0, 1].
type RateError struct {
	Rate decimal.Decimal
}

func (e *RateError) Error() string {
	return fmt.Sprintf("vat rate %s outside [0, 1]", e.Rate.String())
}

func (e *RateError) Coded() *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, e, "vat rate must be between 0 and 1").
		WithDetails(map[string]any{"rate": e.Rate.String()})
}

// PackSizeError reports a pack size string that could not be parsed.
type PackSizeError struct {
	Raw    string
	Reason string
}

func (e *PackSizeError) Error() string {
	return fmt.Sprintf("invalid pack size %q: %s", e.Raw, e.Reason)
}

func (e *PackSizeError) Coded() *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, e, "invalid pack size").
		WithDetails(map[string]any{"pack_size": e.Raw, "reason": e.Reason})
}
