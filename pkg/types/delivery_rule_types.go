package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Weekdays holds delivery weekdays (0=Sunday..6=Saturday) persisted as a JSON array.
type Weekdays []int

// Value serializes the weekdays to JSON.
func (w Weekdays) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]int(w))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes a JSON array into the weekday slice.
func (w *Weekdays) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("weekdays: %w", err)
	}
	*w = decoded
	return nil
}

// FeeTier is a persisted tier row: Fee applies once the subtotal reaches Threshold.
type FeeTier struct {
	Threshold decimal.Decimal `json:"threshold"`
	Fee       decimal.Decimal `json:"fee"`
}

// FeeTiers is a slice marshaled as JSONB.
type FeeTiers []FeeTier

// Value serializes the tiers to JSON.
func (f FeeTiers) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]FeeTier(f))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes JSONB into the tier slice.
func (f *FeeTiers) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []FeeTier
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("fee tiers: %w", err)
	}
	*f = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
