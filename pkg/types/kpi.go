package types

import "time"

// KPISnapshot holds the four headline metrics for one filtered view.
// It is derived, never stored: recomputed on every filter change and
// discarded after presentation.
type KPISnapshot struct {
	TotalEnergyKWH    float64 `json:"totalEnergyKWH"`
	PeakPowerKW       float64 `json:"peakPowerKW"`
	PeakIrradianceWM2 float64 `json:"peakIrradianceWM2"`
	PeakSunHours      float64 `json:"peakSunHours"`
}

// SeriesPoint is one sample of a charted time series.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// PowerSeries is the ordered AC power trace of a single inverter.
type PowerSeries struct {
	InverterID string        `json:"inverterID"`
	Points     []SeriesPoint `json:"points"`
}

// ScatterPoint is one daytime irradiance-vs-power observation, tagged
// with its inverter so the chart can color by inverter.
type ScatterPoint struct {
	InverterID    string  `json:"inverterID"`
	IrradianceWM2 float64 `json:"irradianceWM2"`
	PowerACKW     float64 `json:"powerACKW"`
}

// DistributionSummary is the five-number summary of one inverter's
// daytime power, enough to draw a box plot.
type DistributionSummary struct {
	InverterID string  `json:"inverterID"`
	Count      int     `json:"count"`
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
}
