package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionType(t *testing.T) {
	for _, raw := range []string{"top_up", "consolidate", "hold_and_merge"} {
		got, err := ParseSuggestionType(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, got.String())
		assert.True(t, got.IsValid())
	}

	_, err := ParseSuggestionType("split")
	require.Error(t, err)
	assert.False(t, SuggestionType("split").IsValid())
}

func TestSuggestionTypeIsInformational(t *testing.T) {
	assert.True(t, SuggestionTypeTopUp.IsInformational())
	assert.True(t, SuggestionTypeHoldAndMerge.IsInformational())
	assert.False(t, SuggestionTypeConsolidate.IsInformational())
}

func TestParseDeliveryWarningType(t *testing.T) {
	for _, raw := range []string{"new_supplier_fee", "inefficient_split", "under_moq"} {
		got, err := ParseDeliveryWarningType(raw)
		require.NoError(t, err)
		assert.Equal(t, DeliveryWarningType(raw), got)
	}

	_, err := ParseDeliveryWarningType("UNDER_MOQ")
	require.Error(t, err)
}

func TestParseUnitDimension(t *testing.T) {
	got, err := ParseUnitDimension(" Mass ")
	require.NoError(t, err)
	assert.Equal(t, UnitDimensionMass, got)

	_, err = ParseUnitDimension("length")
	require.Error(t, err)
}
