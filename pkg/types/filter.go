package types

import "time"

// FilterCriteria describes one dashboard interaction: which inverters to
// include and the inclusive calendar-date range to keep.
type FilterCriteria struct {
	Inverters []string  `json:"inverters"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Matches reports whether the reading passes both the inverter-set and
// date-range filters. Start/End are compared at date precision against
// the reading's calendar date.
func (c FilterCriteria) Matches(r Reading) bool {
	found := false
	for _, id := range c.Inverters {
		if id == r.InverterID {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	d := r.Date()
	if d.Before(truncateDay(c.Start)) {
		return false
	}
	if d.After(truncateDay(c.End)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
