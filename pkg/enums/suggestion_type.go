package enums

import "fmt"

// SuggestionType enumerates the optimizer's order-splitting suggestions.
type SuggestionType string

const (
	SuggestionTypeTopUp        SuggestionType = "top_up"
	SuggestionTypeConsolidate  SuggestionType = "consolidate"
	SuggestionTypeHoldAndMerge SuggestionType = "hold_and_merge"
)

var validSuggestionTypes = []SuggestionType{
	SuggestionTypeTopUp,
	SuggestionTypeConsolidate,
	SuggestionTypeHoldAndMerge,
}

// String implements fmt.Stringer.
func (s SuggestionType) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SuggestionType) IsValid() bool {
	for _, candidate := range validSuggestionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsInformational reports whether the suggestion needs a customer action
// before it saves anything. Informational savings never reduce the optimized total.
func (s SuggestionType) IsInformational() bool {
	return s == SuggestionTypeTopUp || s == SuggestionTypeHoldAndMerge
}

// ParseSuggestionType converts raw input into a SuggestionType.
func ParseSuggestionType(value string) (SuggestionType, error) {
	for _, candidate := range validSuggestionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid suggestion type %q", value)
}
