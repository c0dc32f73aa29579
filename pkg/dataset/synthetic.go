package dataset

import (
	"context"
	"log/slog"

	"github.com/pvboard/pvboard/pkg/log"
	"github.com/pvboard/pvboard/pkg/plant"
	"github.com/pvboard/pvboard/pkg/simulate"
	"github.com/pvboard/pvboard/pkg/types"
)

// inverterDerateStep is the per-inverter efficiency falloff applied to
// each inverter after the first. It makes the distribution view show a
// visible spread between otherwise identical inverters.
const inverterDerateStep = 0.03

// SyntheticSource wraps the signal generator as a data source, emitting
// one full archetype table per configured inverter.
type SyntheticSource struct {
	seed      int64
	inverters []string
	profile   *plant.Profile
}

// NewSynthetic returns a SyntheticSource. Each inverter gets its own
// seeded generator so the jitter differs per inverter.
func NewSynthetic(seed int64, inverters []string, profile *plant.Profile) *SyntheticSource {
	return &SyntheticSource{seed: seed, inverters: inverters, profile: profile}
}

// Load builds the synthetic table. It never fails; the error return
// only satisfies the Source contract.
func (s *SyntheticSource) Load(ctx context.Context) (types.ReadingTable, error) {
	var table types.ReadingTable
	for i, id := range s.inverters {
		eff := s.profile.PanelEfficiency * (1 - inverterDerateStep*float64(i))
		g := simulate.New(s.seed+int64(i), id, eff)
		table = append(table, g.Table()...)
	}
	log.Ctx(ctx).InfoContext(ctx, "generated synthetic readings",
		slog.Int("rows", len(table)), slog.Int("inverters", len(s.inverters)))
	return table, nil
}
