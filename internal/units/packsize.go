package units

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PackSize is a parsed pack label: Count packs of Quantity UnitCode each.
type PackSize struct {
	Count    int
	Quantity decimal.Decimal
	UnitCode string
}

// TotalQuantity is Count x Quantity in UnitCode.
func (p PackSize) TotalQuantity() decimal.Decimal {
	return p.Quantity.Mul(decimal.NewFromInt(int64(p.Count)))
}

var packSizePattern = regexp.MustCompile(`^(?:(\d+)\s*[xX×*]\s*)?(\d+(?:[.,]\d+)?)\s*([[:alpha:]]+)$`)

// ParsePackSize reads labels such as "12x500g", "6 x 2 L", "1kg", "0,5 l" and
// "24 stk". A missing count means one pack.
func ParsePackSize(raw string) (PackSize, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PackSize{}, &PackSizeError{Raw: raw, Reason: "empty"}
	}

	m := packSizePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return PackSize{}, &PackSizeError{Raw: raw, Reason: "expected [count x] quantity unit"}
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return PackSize{}, &PackSizeError{Raw: raw, Reason: "count must be a positive integer"}
		}
		count = n
	}

	qty, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", "."))
	if err != nil {
		return PackSize{}, &PackSizeError{Raw: raw, Reason: "quantity is not a number"}
	}
	if qty.Sign() <= 0 {
		return PackSize{}, &PackSizeError{Raw: raw, Reason: "quantity must be positive"}
	}

	return PackSize{Count: count, Quantity: qty, UnitCode: normalizeCode(m[3])}, nil
}
