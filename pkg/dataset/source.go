// Package dataset supplies the reading table the dashboard serves. The
// table is loaded once at startup and held in memory for the lifetime
// of the process; nothing here invalidates or reloads it.
package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/levenlabs/go-lflag"
	"github.com/pvboard/pvboard/pkg/plant"
	"github.com/pvboard/pvboard/pkg/types"
)

// Source produces a cleaned reading table. Implementations perform the
// single upfront read; any failure there is fatal to the session.
type Source interface {
	Load(ctx context.Context) (types.ReadingTable, error)
}

// Configured sets up the data source based on flags.
func Configured(profile *plant.Profile) Source {
	provider := lflag.String("data-source", "csv", "Data source to use (available: csv, synthetic)")
	csvPath := lflag.String("csv-path", "datos_pv.csv", "Path to the readings CSV file")
	inverters := lflag.String("synthetic-inverters", "Inverter-A,Inverter-B", "Comma-delimited inverter IDs for the synthetic source")
	seed := int64(1)
	lflag.JSON(&seed, "synthetic-seed", seed, "Seed for the synthetic source RNG")

	var s struct{ Source }

	lflag.Do(func() {
		switch *provider {
		case "csv":
			s.Source = NewCSV(*csvPath)
		case "synthetic":
			var ids []string
			for _, id := range strings.Split(*inverters, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			s.Source = NewSynthetic(seed, ids, profile)
		default:
			panic(fmt.Sprintf("unknown data source: %s", *provider))
		}
	})

	return &s
}
