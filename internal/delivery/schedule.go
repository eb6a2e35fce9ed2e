package delivery

import "time"

// NextDeliveryDay returns midnight of the soonest delivery day on or after now,
// in now's location. Today is skipped once now is past the cutoff. A rule with
// no delivery days has no next day.
func (r Rule) NextDeliveryDay(now time.Time) *time.Time {
	if len(r.DeliveryDays) == 0 {
		return nil
	}
	days := make(map[time.Weekday]struct{}, len(r.DeliveryDays))
	for _, d := range r.DeliveryDays {
		days[d] = struct{}{}
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for offset := 0; offset <= 7; offset++ {
		candidate := today.AddDate(0, 0, offset)
		if _, ok := days[candidate.Weekday()]; !ok {
			continue
		}
		if offset == 0 && r.CutoffTime != nil && now.After(r.CutoffTime.On(now)) {
			continue
		}
		return &candidate
	}
	return nil
}
