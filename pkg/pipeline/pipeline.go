// Package pipeline turns a cleaned reading table plus one set of filter
// criteria into everything a single dashboard interaction needs. All
// functions are pure: no session state, no caching, recomputed per
// request.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/pvboard/pvboard/pkg/plant"
	"github.com/pvboard/pvboard/pkg/types"
)

var (
	// ErrNoData is returned when the filter matches zero rows. It is a
	// terminal condition, not a fault: the caller must suppress KPI
	// display rather than render NaN.
	ErrNoData = errors.New("no readings match the selected filters")

	// ErrInvalidRange is returned for a date range whose start is after
	// its end. This is a user-input error.
	ErrInvalidRange = errors.New("invalid date range")
)

// Result is the full output of one filter interaction.
type Result struct {
	Filtered   types.ReadingTable  `json:"filtered"`
	KPIs       types.KPISnapshot   `json:"kpis"`
	Power      []types.PowerSeries `json:"power"`
	Irradiance []types.SeriesPoint `json:"irradiance"`
}

// Compute validates the criteria, filters the table and derives the KPI
// snapshot and chart series. It short-circuits with ErrNoData before
// any KPI arithmetic when the filter matches nothing, so division by
// zero and max-over-empty can never happen downstream.
func Compute(table types.ReadingTable, criteria types.FilterCriteria, profile plant.Profile) (Result, error) {
	if truncateDay(criteria.End).Before(truncateDay(criteria.Start)) {
		return Result{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, criteria.Start.Format("2006-01-02"), criteria.End.Format("2006-01-02"))
	}

	filtered := Filter(table, criteria)
	if len(filtered) == 0 {
		return Result{}, ErrNoData
	}

	return Result{
		Filtered:   filtered,
		KPIs:       KPIs(filtered, len(criteria.Inverters), profile),
		Power:      PowerSeries(filtered),
		Irradiance: AverageIrradiance(filtered),
	}, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Filter keeps the rows matching the criteria, preserving order. It is
// idempotent: filtering an already-filtered table with the same
// criteria returns an identical table.
func Filter(table types.ReadingTable, criteria types.FilterCriteria) types.ReadingTable {
	var out types.ReadingTable
	for _, r := range table {
		if criteria.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// KPIs computes the four headline metrics over a non-empty filtered
// table. selectedInverters is the size of the filter's inverter set,
// which scales the nameplate denominator for peak sun hours.
func KPIs(filtered types.ReadingTable, selectedInverters int, profile plant.Profile) types.KPISnapshot {
	var snap types.KPISnapshot
	var sumPowerKW float64
	for _, r := range filtered {
		sumPowerKW += r.PowerACKW
		if r.PowerACKW > snap.PeakPowerKW {
			snap.PeakPowerKW = r.PowerACKW
		}
		if r.IrradianceWM2 > snap.PeakIrradianceWM2 {
			snap.PeakIrradianceWM2 = r.IrradianceWM2
		}
	}

	// Left Riemann sum at the assumed sampling cadence. Not physically
	// exact, but the system's defined approximation.
	snap.TotalEnergyKWH = sumPowerKW * profile.SamplingIntervalHours

	// Peak sun hours: equivalent hours at standard 1000 W/m² needed to
	// produce the observed energy, against the assumed nameplate of the
	// selected inverters.
	snap.PeakSunHours = snap.TotalEnergyKWH / (profile.NameplateKWPerInverter * float64(selectedInverters))

	return snap
}
