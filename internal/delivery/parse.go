package delivery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"go.uber.org/multierr"
)

// ParseRule validates a persisted row and converts it into a Rule. Every
// problem in the row is reported. Negative money amounts are kept as stored.
func ParseRule(row models.DeliveryRule) (Rule, error) {
	rule := Rule{
		ID:                   row.ID,
		SupplierID:           row.SupplierID,
		Zone:                 row.Zone,
		FlatFee:              row.FlatFee,
		FuelSurchargePct:     row.FuelSurchargePct,
		PalletDepositPerUnit: row.PalletDepositPerUnit,
		IsActive:             row.IsActive,
	}
	if row.FreeThresholdExVat.Valid {
		threshold := row.FreeThresholdExVat.Decimal
		rule.FreeThresholdExVat = &threshold
	}

	var errs error
	if row.CutoffTime != nil && strings.TrimSpace(*row.CutoffTime) != "" {
		cutoff, err := ParseClockTime(*row.CutoffTime)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			rule.CutoffTime = &cutoff
		}
	}

	seen := make(map[int]struct{}, len(row.DeliveryDays))
	for _, day := range row.DeliveryDays {
		if day < 0 || day > 6 {
			errs = multierr.Append(errs, fmt.Errorf("delivery day %d outside 0..6", day))
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		rule.DeliveryDays = append(rule.DeliveryDays, time.Weekday(day))
	}
	sort.Slice(rule.DeliveryDays, func(i, j int) bool { return rule.DeliveryDays[i] < rule.DeliveryDays[j] })

	thresholds := make(map[string]struct{}, len(row.Tiers))
	for i, tier := range row.Tiers {
		if tier.Threshold.Sign() < 0 {
			errs = multierr.Append(errs, fmt.Errorf("tier[%d]: threshold must not be negative", i))
			continue
		}
		key := tier.Threshold.String()
		if _, dup := thresholds[key]; dup {
			errs = multierr.Append(errs, fmt.Errorf("tier[%d]: duplicate threshold %s", i, key))
			continue
		}
		thresholds[key] = struct{}{}
		rule.Tiers = append(rule.Tiers, Tier{Threshold: tier.Threshold, Fee: tier.Fee})
	}
	sort.SliceStable(rule.Tiers, func(i, j int) bool {
		return rule.Tiers[i].Threshold.LessThan(rule.Tiers[j].Threshold)
	})

	if errs != nil {
		return Rule{}, fmt.Errorf("delivery rule %s: %w", row.ID, errs)
	}
	return rule, nil
}

// ParseClockTime reads "HH:MM" or "HH:MM:SS" (seconds are dropped).
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ClockTime{}, fmt.Errorf("cutoff %q: expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("cutoff %q: invalid hour", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return ClockTime{}, fmt.Errorf("cutoff %q: invalid minute", raw)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}
