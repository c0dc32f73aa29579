package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pvboard/pvboard/pkg/log"
	"github.com/pvboard/pvboard/pkg/types"
)

// Column names the input file must carry in its header row.
const (
	ColumnTimestamp  = "Timestamp"
	ColumnInverter   = "Nombre_Inversor"
	ColumnPowerAC    = "Potencia_AC_kW"
	ColumnIrradiance = "Irradiancia_GHI_W_m2"
)

// timestampFormats are tried in order. The input is ISO-like but not
// guaranteed to carry a zone or a T separator.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// CSVSource reads the delimited readings file once and cleans it.
type CSVSource struct {
	path string
}

// NewCSV returns a CSVSource for the given file path.
func NewCSV(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load parses the file into a time-ordered reading table. Rows whose
// timestamp or numeric fields fail to parse are untrustworthy and are
// dropped entirely, never repaired or defaulted.
func (c *CSVSource) Load(ctx context.Context) (types.ReadingTable, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open readings file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var table types.ReadingTable
	var dropped int
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line+1, err)
		}
		line++

		reading, ok := parseRow(record, cols)
		if !ok {
			dropped++
			log.Ctx(ctx).DebugContext(ctx, "dropped malformed row", slog.Int("line", line))
			continue
		}
		table = append(table, reading)
	}

	if dropped > 0 {
		log.Ctx(ctx).WarnContext(ctx, "dropped malformed rows during cleaning",
			slog.Int("dropped", dropped), slog.Int("kept", len(table)))
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Timestamp.Before(table[j].Timestamp)
	})
	return table, nil
}

type columns struct {
	timestamp  int
	inverter   int
	power      int
	irradiance int
}

func columnIndexes(header []string) (columns, error) {
	cols := columns{timestamp: -1, inverter: -1, power: -1, irradiance: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnTimestamp:
			cols.timestamp = i
		case ColumnInverter:
			cols.inverter = i
		case ColumnPowerAC:
			cols.power = i
		case ColumnIrradiance:
			cols.irradiance = i
		}
	}
	for name, idx := range map[string]int{
		ColumnTimestamp:  cols.timestamp,
		ColumnInverter:   cols.inverter,
		ColumnPowerAC:    cols.power,
		ColumnIrradiance: cols.irradiance,
	} {
		if idx < 0 {
			return columns{}, fmt.Errorf("missing required column %q in header", name)
		}
	}
	return cols, nil
}

func parseRow(record []string, cols columns) (types.Reading, bool) {
	need := cols.timestamp
	for _, i := range []int{cols.inverter, cols.power, cols.irradiance} {
		if i > need {
			need = i
		}
	}
	if len(record) <= need {
		return types.Reading{}, false
	}

	ts, ok := parseTimestamp(strings.TrimSpace(record[cols.timestamp]))
	if !ok {
		return types.Reading{}, false
	}
	inverter := strings.TrimSpace(record[cols.inverter])
	if inverter == "" {
		return types.Reading{}, false
	}
	power, err := strconv.ParseFloat(strings.TrimSpace(record[cols.power]), 64)
	if err != nil {
		return types.Reading{}, false
	}
	irradiance, err := strconv.ParseFloat(strings.TrimSpace(record[cols.irradiance]), 64)
	if err != nil {
		return types.Reading{}, false
	}

	return types.Reading{
		Timestamp:     ts,
		InverterID:    inverter,
		PowerACKW:     power,
		IrradianceWM2: irradiance,
	}, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
