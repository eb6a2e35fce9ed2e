package enums

import "fmt"

// DeliveryWarningType enumerates warnings raised against a supplier's share of an order.
type DeliveryWarningType string

const (
	DeliveryWarningTypeNewSupplierFee   DeliveryWarningType = "new_supplier_fee"
	DeliveryWarningTypeInefficientSplit DeliveryWarningType = "inefficient_split"
	DeliveryWarningTypeUnderMOQ         DeliveryWarningType = "under_moq"
)

var validDeliveryWarningTypes = []DeliveryWarningType{
	DeliveryWarningTypeNewSupplierFee,
	DeliveryWarningTypeInefficientSplit,
	DeliveryWarningTypeUnderMOQ,
}

// String implements fmt.Stringer.
func (d DeliveryWarningType) String() string {
	return string(d)
}

// IsValid reports whether the value is known.
func (d DeliveryWarningType) IsValid() bool {
	for _, candidate := range validDeliveryWarningTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryWarningType converts raw input into a DeliveryWarningType.
func ParseDeliveryWarningType(value string) (DeliveryWarningType, error) {
	for _, candidate := range validDeliveryWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery warning type %q", value)
}
