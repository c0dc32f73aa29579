package types

import (
	"sort"
	"time"
)

// DayLabel tags a synthetic reading with the day archetype it was
// generated under.
type DayLabel string

const (
	DayClear   DayLabel = "Day 1 (Clear)"
	DayCloudy  DayLabel = "Day 2 (Cloudy)"
	DayPartial DayLabel = "Day 3 (Partial)"
)

// Reading is one long-format sensor sample: the AC output of a single
// inverter and the plane-of-array irradiance at one instant.
type Reading struct {
	Timestamp     time.Time `json:"timestamp"`
	InverterID    string    `json:"inverterID"`
	IrradianceWM2 float64   `json:"irradianceWM2"`
	PowerACKW     float64   `json:"powerACKW"`
	DayLabel      DayLabel  `json:"dayLabel,omitempty"`
}

// Date returns the calendar date of the reading, truncated to midnight
// in the reading's location. Date-range filters compare against this.
func (r Reading) Date() time.Time {
	t := r.Timestamp
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ReadingTable is a time-ordered collection of readings. Ordering across
// inverters is irrelevant; within one inverter timestamps are strictly
// increasing.
type ReadingTable []Reading

// InverterIDs returns the sorted distinct inverter identifiers present
// in the table.
func (t ReadingTable) InverterIDs() []string {
	seen := make(map[string]struct{}, 4)
	var ids []string
	for _, r := range t {
		if _, ok := seen[r.InverterID]; ok {
			continue
		}
		seen[r.InverterID] = struct{}{}
		ids = append(ids, r.InverterID)
	}
	sort.Strings(ids)
	return ids
}

// DateRange returns the earliest and latest calendar dates covered by
// the table. ok is false for an empty table.
func (t ReadingTable) DateRange() (min, max time.Time, ok bool) {
	for _, r := range t {
		d := r.Date()
		if !ok {
			min, max, ok = d, d, true
			continue
		}
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, ok
}
