package pipeline

import (
	"sort"
	"time"

	"github.com/pvboard/pvboard/pkg/types"
)

// PowerSeries extracts one ordered (timestamp, power) sequence per
// distinct inverter present in the filtered table, sorted by inverter
// ID for stable chart legends.
func PowerSeries(filtered types.ReadingTable) []types.PowerSeries {
	byInverter := make(map[string][]types.SeriesPoint)
	for _, r := range filtered {
		byInverter[r.InverterID] = append(byInverter[r.InverterID], types.SeriesPoint{
			Timestamp: r.Timestamp,
			Value:     r.PowerACKW,
		})
	}

	out := make([]types.PowerSeries, 0, len(byInverter))
	for id, points := range byInverter {
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Timestamp.Before(points[j].Timestamp)
		})
		out = append(out, types.PowerSeries{InverterID: id, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InverterID < out[j].InverterID })
	return out
}

// AverageIrradiance collapses the per-inverter irradiance readings into
// one series. Irradiance sensors are shared or duplicated across
// inverters, so values at the same timestamp are averaged.
func AverageIrradiance(filtered types.ReadingTable) []types.SeriesPoint {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	times := make(map[int64]time.Time)
	for _, r := range filtered {
		key := r.Timestamp.UnixNano()
		sums[key] += r.IrradianceWM2
		counts[key]++
		times[key] = r.Timestamp
	}

	out := make([]types.SeriesPoint, 0, len(sums))
	for key, sum := range sums {
		out = append(out, types.SeriesPoint{
			Timestamp: times[key],
			Value:     sum / float64(counts[key]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Daytime restricts the table to rows above the daylight irradiance
// threshold, keeping near-zero nighttime noise out of the correlation
// and distribution views.
func Daytime(filtered types.ReadingTable, thresholdWM2 float64) types.ReadingTable {
	var out types.ReadingTable
	for _, r := range filtered {
		if r.IrradianceWM2 > thresholdWM2 {
			out = append(out, r)
		}
	}
	return out
}
