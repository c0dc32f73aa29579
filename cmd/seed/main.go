// Command seed writes a synthetic readings CSV in the format the csv
// data source expects. It can interleave malformed timestamp rows to
// exercise the cleaning step.
package main

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/levenlabs/go-lflag"
	"github.com/pvboard/pvboard/pkg/dataset"
	"github.com/pvboard/pvboard/pkg/log"
	"github.com/pvboard/pvboard/pkg/plant"
)

func main() {
	profile := plant.Configured()
	out := lflag.String("out", "datos_pv.csv", "Path of the CSV file to write")
	inverters := lflag.String("inverters", "Inverter-A,Inverter-B", "Comma-delimited inverter IDs to generate")
	malformed := lflag.String("malformed-rows", "0", "Number of malformed timestamp rows to interleave")
	seed := int64(1)
	lflag.JSON(&seed, "seed", seed, "Seed for the generator RNG")
	lflag.Configure()

	ctx := context.Background()

	badRows, err := strconv.Atoi(*malformed)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "invalid malformed-rows", slog.Any("error", err))
		os.Exit(1)
	}

	var ids []string
	for _, id := range strings.Split(*inverters, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	src := dataset.NewSynthetic(seed, ids, profile)
	table, err := src.Load(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to generate readings", slog.Any("error", err))
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to create output file", slog.Any("error", err))
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		dataset.ColumnTimestamp,
		dataset.ColumnInverter,
		dataset.ColumnPowerAC,
		dataset.ColumnIrradiance,
	}); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to write header", slog.Any("error", err))
		os.Exit(1)
	}

	for i, r := range table {
		row := []string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.InverterID,
			strconv.FormatFloat(r.PowerACKW, 'f', 3, 64),
			strconv.FormatFloat(r.IrradianceWM2, 'f', 3, 64),
		}
		if badRows > 0 && i%29 == 7 {
			// an untrustworthy timestamp, like a corrupted logger line
			row[0] = "2loc 08:45:00"
			badRows--
		}
		if err := w.Write(row); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to write row", slog.Any("error", err))
			os.Exit(1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to flush output", slog.Any("error", err))
		os.Exit(1)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded readings file",
		slog.String("path", *out), slog.Int("rows", len(table)))
}
