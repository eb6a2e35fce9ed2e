package delivery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"github.com/gsindri/kaupa-skil-sub004/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() models.DeliveryRule {
	cutoff := "14:30:00"
	return models.DeliveryRule{
		ID:                   uuid.New(),
		SupplierID:           supplierA,
		Zone:                 "reykjavik",
		FreeThresholdExVat:   decimal.NewNullDecimal(dec("10000")),
		FlatFee:              dec("1500"),
		FuelSurchargePct:     dec("0.1"),
		PalletDepositPerUnit: dec("0"),
		CutoffTime:           &cutoff,
		DeliveryDays:         types.Weekdays{4, 1, 1},
		Tiers: types.FeeTiers{
			{Threshold: dec("10000"), Fee: dec("500")},
			{Threshold: dec("0"), Fee: dec("1000")},
		},
		IsActive: true,
	}
}

func TestParseRule(t *testing.T) {
	rule, err := ParseRule(validRow())
	require.NoError(t, err)

	require.NotNil(t, rule.FreeThresholdExVat)
	assert.True(t, rule.FreeThresholdExVat.Equal(dec("10000")))
	require.NotNil(t, rule.CutoffTime)
	assert.Equal(t, "14:30", rule.CutoffTime.String())
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, rule.DeliveryDays)
	require.Len(t, rule.Tiers, 2)
	assert.True(t, rule.Tiers[0].Threshold.IsZero(), "tiers are sorted ascending")
	assert.True(t, rule.IsActive)
}

func TestParseRule_NullableFields(t *testing.T) {
	row := validRow()
	row.FreeThresholdExVat = decimal.NullDecimal{}
	row.CutoffTime = nil
	row.Tiers = nil

	rule, err := ParseRule(row)
	require.NoError(t, err)
	assert.Nil(t, rule.FreeThresholdExVat)
	assert.Nil(t, rule.CutoffTime)
	assert.Empty(t, rule.Tiers)
}

func TestParseRule_ReportsEveryProblem(t *testing.T) {
	row := validRow()
	bad := "25:00"
	row.CutoffTime = &bad
	row.DeliveryDays = types.Weekdays{7, -1}
	row.Tiers = types.FeeTiers{
		{Threshold: dec("-1"), Fee: dec("1")},
		{Threshold: dec("100"), Fee: dec("1")},
		{Threshold: dec("100"), Fee: dec("2")},
	}

	_, err := ParseRule(row)
	require.Error(t, err)
	for _, fragment := range []string{"invalid hour", "delivery day 7", "delivery day -1", "threshold must not be negative", "duplicate threshold"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestParseRule_KeepsNegativeMoney(t *testing.T) {
	row := validRow()
	row.FlatFee = dec("-100")

	rule, err := ParseRule(row)
	require.NoError(t, err)
	assert.True(t, rule.FlatFee.Equal(dec("-100")))
}

func TestParseClockTime(t *testing.T) {
	got, err := ParseClockTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 9, Minute: 5}, got)

	for _, raw := range []string{"9", "24:00", "12:60", "12:5", "noon"} {
		_, err := ParseClockTime(raw)
		assert.Error(t, err, raw)
	}
}
