// Package plant holds the fixed characteristics of the monitored PV
// plant. The values here are domain conventions, not measurements: the
// pipeline treats them as configuration rather than deriving them from
// the data.
package plant

import (
	"fmt"
	"os"

	"github.com/levenlabs/go-lflag"
	"gopkg.in/yaml.v3"
)

// Profile describes the plant assumptions the KPI math depends on.
type Profile struct {
	// NameplateKWPerInverter is the assumed rated capacity of each
	// inverter, used as the denominator for peak sun hours.
	NameplateKWPerInverter float64 `yaml:"nameplateKWPerInverter" json:"nameplateKWPerInverter"`
	// PanelEfficiency converts irradiance (W/m²) to AC power (kW) in the
	// synthetic generator.
	PanelEfficiency float64 `yaml:"panelEfficiency" json:"panelEfficiency"`
	// SamplingIntervalHours is the assumed cadence of the input data.
	// Energy totals are a left Riemann sum at this interval.
	SamplingIntervalHours float64 `yaml:"samplingIntervalHours" json:"samplingIntervalHours"`
	// DaylightThresholdWM2 is the irradiance floor for the daytime
	// subset used by correlation and distribution views.
	DaylightThresholdWM2 float64 `yaml:"daylightThresholdWM2" json:"daylightThresholdWM2"`
}

// Default returns the conventional profile: 50 kW nameplate, 15% panel
// efficiency, 15-minute cadence, 50 W/m² daylight floor.
func Default() Profile {
	return Profile{
		NameplateKWPerInverter: 50,
		PanelEfficiency:        0.15,
		SamplingIntervalHours:  0.25,
		DaylightThresholdWM2:   50,
	}
}

// Load reads a profile from a YAML file. Fields left zero in the file
// fall back to their defaults.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read plant profile: %w", err)
	}
	p := Profile{}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse plant profile: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid plant profile: %w", err)
	}
	return p, nil
}

func (p *Profile) applyDefaults() {
	def := Default()
	if p.NameplateKWPerInverter == 0 {
		p.NameplateKWPerInverter = def.NameplateKWPerInverter
	}
	if p.PanelEfficiency == 0 {
		p.PanelEfficiency = def.PanelEfficiency
	}
	if p.SamplingIntervalHours == 0 {
		p.SamplingIntervalHours = def.SamplingIntervalHours
	}
	if p.DaylightThresholdWM2 == 0 {
		p.DaylightThresholdWM2 = def.DaylightThresholdWM2
	}
}

// Validate checks that the profile can't produce nonsensical KPIs.
func (p Profile) Validate() error {
	if p.NameplateKWPerInverter <= 0 {
		return fmt.Errorf("nameplateKWPerInverter must be positive, got %v", p.NameplateKWPerInverter)
	}
	if p.PanelEfficiency <= 0 || p.PanelEfficiency > 1 {
		return fmt.Errorf("panelEfficiency must be in (0, 1], got %v", p.PanelEfficiency)
	}
	if p.SamplingIntervalHours <= 0 {
		return fmt.Errorf("samplingIntervalHours must be positive, got %v", p.SamplingIntervalHours)
	}
	if p.DaylightThresholdWM2 < 0 {
		return fmt.Errorf("daylightThresholdWM2 must not be negative, got %v", p.DaylightThresholdWM2)
	}
	return nil
}

// Configured sets up the plant profile based on flags. Without a
// profile file the defaults are used.
func Configured() *Profile {
	p := &Profile{}
	path := lflag.String("plant-profile", "", "Path to a YAML plant profile file (defaults used when empty)")

	lflag.Do(func() {
		if *path == "" {
			*p = Default()
			return
		}
		loaded, err := Load(*path)
		if err != nil {
			panic(fmt.Sprintf("plant profile failed to load: %v", err))
		}
		*p = loaded
	})

	return p
}
