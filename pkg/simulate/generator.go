// Package simulate produces synthetic PV sensor data: three archetypal
// day conditions (clear, cloudy, partial with clipping) sharing one
// hourly timestamp axis. It is a stand-in data source for the metrics
// pipeline's input contract, not a physical model.
package simulate

import (
	"math"
	"math/rand"
	"time"

	"github.com/pvboard/pvboard/pkg/types"
)

const (
	hoursPerDay = 24

	// AxisHours is the length of the shared hourly timestamp axis.
	// Every archetype emits one reading per axis hour, so the full
	// table has 3 × AxisHours rows.
	AxisHours = 72

	peakIrradianceWM2 = 1000.0
	baseNoiseStdDev   = 5.0
	cloudAttenuation  = 0.4
	cloudNoiseStdDev  = 20.0

	// The partial archetype dips its power at two samples on the second
	// calendar day, decoupled from the irradiance at those instants.
	// This models transient clipping/shading events and feeds the
	// scatter view's outliers.
	clipIndexA  = hoursPerDay + 11
	clipIndexB  = hoursPerDay + 14
	clipFactorA = 0.3
	clipFactorB = 0.4
)

// DefaultStart anchors the synthetic timestamp axis.
var DefaultStart = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

// Generator builds the three-archetype reading table. The curve shape
// is deterministic; only the per-sample jitter depends on the seed.
type Generator struct {
	rng        *rand.Rand
	start      time.Time
	inverterID string
	efficiency float64
}

// New returns a Generator for one inverter. efficiency converts
// irradiance (W/m²) to AC power (kW).
func New(seed int64, inverterID string, efficiency float64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		start:      DefaultStart,
		inverterID: inverterID,
		efficiency: efficiency,
	}
}

// SetStart overrides the first timestamp of the axis.
func (g *Generator) SetStart(t time.Time) {
	g.start = t
}

// Table emits the full long-format table: the clear, cloudy and partial
// archetype series concatenated, each covering the whole axis.
func (g *Generator) Table() types.ReadingTable {
	base := g.baseIrradiance()

	// The cloudy archetype attenuates the base curve and adds much
	// higher variance, modeling intermittent cloud cover.
	cloudy := make([]float64, AxisHours)
	for i := range cloudy {
		cloudy[i] = math.Max(0, base[i]*cloudAttenuation+g.rng.NormFloat64()*cloudNoiseStdDev)
	}

	table := make(types.ReadingTable, 0, 3*AxisHours)
	for i := 0; i < AxisHours; i++ {
		table = append(table, g.reading(i, types.DayClear, base[i], base[i]*g.efficiency))
	}
	for i := 0; i < AxisHours; i++ {
		table = append(table, g.reading(i, types.DayCloudy, cloudy[i], cloudy[i]*g.efficiency))
	}
	for i := 0; i < AxisHours; i++ {
		power := base[i] * g.efficiency
		switch i {
		case clipIndexA:
			power *= clipFactorA
		case clipIndexB:
			power *= clipFactorB
		}
		table = append(table, g.reading(i, types.DayPartial, base[i], power))
	}
	return table
}

// baseIrradiance is the shared solar cycle: a sin² bell peaking at
// solar noon and zero at night, with small Gaussian jitter. The clear
// and partial archetypes use these exact values.
func (g *Generator) baseIrradiance() []float64 {
	base := make([]float64, AxisHours)
	for i := range base {
		cycle := math.Sin(math.Pi * float64(i%hoursPerDay) / hoursPerDay)
		base[i] = math.Max(0, cycle*cycle*peakIrradianceWM2+g.rng.NormFloat64()*baseNoiseStdDev)
	}
	return base
}

func (g *Generator) reading(i int, label types.DayLabel, irradiance, power float64) types.Reading {
	return types.Reading{
		Timestamp:     g.start.Add(time.Duration(i) * time.Hour),
		InverterID:    g.inverterID,
		IrradianceWM2: irradiance,
		PowerACKW:     power,
		DayLabel:      label,
	}
}
