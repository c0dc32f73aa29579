package pipeline

import (
	"sort"

	"github.com/pvboard/pvboard/pkg/types"
)

// ScatterPoints flattens a daytime table into irradiance-vs-power
// observations for the power-curve scatter view.
func ScatterPoints(daytime types.ReadingTable) []types.ScatterPoint {
	out := make([]types.ScatterPoint, 0, len(daytime))
	for _, r := range daytime {
		out = append(out, types.ScatterPoint{
			InverterID:    r.InverterID,
			IrradianceWM2: r.IrradianceWM2,
			PowerACKW:     r.PowerACKW,
		})
	}
	return out
}

// PowerDistribution summarizes each inverter's daytime power as a
// five-number summary, sorted by inverter ID. Empty input yields an
// empty slice.
func PowerDistribution(daytime types.ReadingTable) []types.DistributionSummary {
	byInverter := make(map[string][]float64)
	for _, r := range daytime {
		byInverter[r.InverterID] = append(byInverter[r.InverterID], r.PowerACKW)
	}

	out := make([]types.DistributionSummary, 0, len(byInverter))
	for id, values := range byInverter {
		sort.Float64s(values)
		out = append(out, types.DistributionSummary{
			InverterID: id,
			Count:      len(values),
			Min:        values[0],
			Q1:         quantile(values, 0.25),
			Median:     quantile(values, 0.5),
			Q3:         quantile(values, 0.75),
			Max:        values[len(values)-1],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InverterID < out[j].InverterID })
	return out
}

// quantile linearly interpolates between the two nearest ranks of a
// sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
