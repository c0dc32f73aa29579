package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/pvboard/pvboard/pkg/plant"
	"github.com/pvboard/pvboard/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() types.ReadingTable {
	return types.ReadingTable{
		{Timestamp: day(1).Add(8 * time.Hour), InverterID: "Inverter-A", PowerACKW: 10, IrradianceWM2: 400},
		{Timestamp: day(1).Add(8*time.Hour + 15*time.Minute), InverterID: "Inverter-A", PowerACKW: 20, IrradianceWM2: 800},
		{Timestamp: day(1).Add(8 * time.Hour), InverterID: "Inverter-B", PowerACKW: 9, IrradianceWM2: 400},
		{Timestamp: day(2).Add(12 * time.Hour), InverterID: "Inverter-B", PowerACKW: 30, IrradianceWM2: 950},
	}
}

func allInverters() types.FilterCriteria {
	return types.FilterCriteria{
		Inverters: []string{"Inverter-A", "Inverter-B"},
		Start:     day(1),
		End:       day(2),
	}
}

func TestFilterIdempotent(t *testing.T) {
	table := sampleTable()
	criteria := types.FilterCriteria{
		Inverters: []string{"Inverter-A"},
		Start:     day(1),
		End:       day(1),
	}

	once := Filter(table, criteria)
	require.Len(t, once, 2)
	twice := Filter(once, criteria)
	assert.Equal(t, once, twice)
}

func TestKPIs(t *testing.T) {
	profile := plant.Default()

	t.Run("energy is a left Riemann sum at the sampling cadence", func(t *testing.T) {
		table := types.ReadingTable{
			{Timestamp: day(1), InverterID: "Inverter-A", PowerACKW: 10},
			{Timestamp: day(1).Add(15 * time.Minute), InverterID: "Inverter-A", PowerACKW: 20},
		}
		snap := KPIs(table, 1, profile)
		assert.Equal(t, 7.5, snap.TotalEnergyKWH)
		assert.Equal(t, 20.0, snap.PeakPowerKW)
	})

	t.Run("peak sun hours scale inversely with selected inverters", func(t *testing.T) {
		table := sampleTable()
		one := KPIs(table, 1, profile)
		two := KPIs(table, 2, profile)
		assert.Equal(t, one.TotalEnergyKWH, two.TotalEnergyKWH)
		assert.Equal(t, one.PeakSunHours/2, two.PeakSunHours)
	})

	t.Run("peaks over the filtered rows", func(t *testing.T) {
		snap := KPIs(sampleTable(), 2, profile)
		assert.Equal(t, 30.0, snap.PeakPowerKW)
		assert.Equal(t, 950.0, snap.PeakIrradianceWM2)
	})
}

func TestComputeShortCircuits(t *testing.T) {
	profile := plant.Default()
	table := sampleTable()

	t.Run("empty result stops before KPI arithmetic", func(t *testing.T) {
		criteria := types.FilterCriteria{
			Inverters: []string{"Inverter-Z"},
			Start:     day(1),
			End:       day(2),
		}
		result, err := Compute(table, criteria, profile)
		require.ErrorIs(t, err, ErrNoData)
		assert.Zero(t, result)
		assert.False(t, math.IsNaN(result.KPIs.PeakSunHours), "no NaN may escape")
	})

	t.Run("inverted date range is a user error", func(t *testing.T) {
		criteria := types.FilterCriteria{
			Inverters: []string{"Inverter-A"},
			Start:     day(2),
			End:       day(1),
		}
		_, err := Compute(table, criteria, profile)
		require.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("empty source table", func(t *testing.T) {
		_, err := Compute(types.ReadingTable{}, allInverters(), profile)
		require.ErrorIs(t, err, ErrNoData)
	})
}

func TestComputeResult(t *testing.T) {
	profile := plant.Default()
	result, err := Compute(sampleTable(), allInverters(), profile)
	require.NoError(t, err)

	assert.Len(t, result.Filtered, 4)
	assert.Equal(t, (10.0+20+9+30)*0.25, result.KPIs.TotalEnergyKWH)
	require.Len(t, result.Power, 2)
	assert.NotEmpty(t, result.Irradiance)
}

func TestPowerSeries(t *testing.T) {
	series := PowerSeries(sampleTable())
	require.Len(t, series, 2)

	// sorted by inverter ID for stable legends
	assert.Equal(t, "Inverter-A", series[0].InverterID)
	assert.Equal(t, "Inverter-B", series[1].InverterID)

	// each series ordered by timestamp
	require.Len(t, series[0].Points, 2)
	assert.True(t, series[0].Points[0].Timestamp.Before(series[0].Points[1].Timestamp))
	assert.Equal(t, 10.0, series[0].Points[0].Value)
	assert.Equal(t, 20.0, series[0].Points[1].Value)
}

func TestAverageIrradiance(t *testing.T) {
	table := types.ReadingTable{
		{Timestamp: day(1).Add(8 * time.Hour), InverterID: "Inverter-A", IrradianceWM2: 400},
		{Timestamp: day(1).Add(8 * time.Hour), InverterID: "Inverter-B", IrradianceWM2: 500},
		{Timestamp: day(1).Add(9 * time.Hour), InverterID: "Inverter-A", IrradianceWM2: 700},
	}
	series := AverageIrradiance(table)
	require.Len(t, series, 2)

	assert.Equal(t, day(1).Add(8*time.Hour), series[0].Timestamp)
	assert.Equal(t, 450.0, series[0].Value, "duplicated sensors average out")
	assert.Equal(t, 700.0, series[1].Value)
}

func TestDaytime(t *testing.T) {
	table := types.ReadingTable{
		{InverterID: "Inverter-A", IrradianceWM2: 0},
		{InverterID: "Inverter-A", IrradianceWM2: 50},
		{InverterID: "Inverter-A", IrradianceWM2: 50.1},
		{InverterID: "Inverter-A", IrradianceWM2: 900},
	}
	daytime := Daytime(table, 50)
	require.Len(t, daytime, 2, "threshold is strict")
	assert.Equal(t, 50.1, daytime[0].IrradianceWM2)
}
