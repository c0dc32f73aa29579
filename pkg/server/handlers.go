package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pvboard/pvboard/pkg/log"
	"github.com/pvboard/pvboard/pkg/pipeline"
	"github.com/pvboard/pvboard/pkg/types"
)

const dateLayout = "2006-01-02"

// invertersResponse feeds the dashboard's filter widgets: the selectable
// inverters and the date bounds of the loaded table.
type invertersResponse struct {
	Inverters []string `json:"inverters"`
	MinDate   string   `json:"minDate"`
	MaxDate   string   `json:"maxDate"`
}

func (s *Server) handleListInverters(w http.ResponseWriter, r *http.Request) {
	resp := invertersResponse{Inverters: s.table.InverterIDs()}
	if min, max, ok := s.table.DateRange(); ok {
		resp.MinDate = min.Format(dateLayout)
		resp.MaxDate = max.Format(dateLayout)
	}
	writeJSON(w, resp)
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	result, ok := s.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, result.Filtered)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	result, ok := s.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, result.KPIs)
}

func (s *Server) handlePowerSeries(w http.ResponseWriter, r *http.Request) {
	result, ok := s.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, result.Power)
}

func (s *Server) handleIrradianceSeries(w http.ResponseWriter, r *http.Request) {
	result, ok := s.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, result.Irradiance)
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	result, ok := s.compute(w, r)
	if !ok {
		return
	}
	daytime := pipeline.Daytime(result.Filtered, s.profile.DaylightThresholdWM2)
	writeJSON(w, pipeline.ScatterPoints(daytime))
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	result, ok := s.compute(w, r)
	if !ok {
		return
	}
	daytime := pipeline.Daytime(result.Filtered, s.profile.DaylightThresholdWM2)
	writeJSON(w, pipeline.PowerDistribution(daytime))
}

// compute parses the filter from the request and runs the pipeline,
// writing the appropriate error response on failure.
func (s *Server) compute(w http.ResponseWriter, r *http.Request) (pipeline.Result, bool) {
	ctx := r.Context()

	criteria, err := s.parseFilter(r)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("invalid filter: %v", err), http.StatusBadRequest)
		return pipeline.Result{}, false
	}

	result, err := pipeline.Compute(s.table, criteria, *s.profile)
	switch {
	case errors.Is(err, pipeline.ErrInvalidRange):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return pipeline.Result{}, false
	case errors.Is(err, pipeline.ErrNoData):
		writeJSONError(w, "no data for the selected filters", http.StatusNotFound)
		return pipeline.Result{}, false
	case err != nil:
		log.Ctx(ctx).ErrorContext(ctx, "pipeline failed", slog.Any("error", err))
		writeJSONError(w, "failed to compute metrics", http.StatusInternalServerError)
		return pipeline.Result{}, false
	}
	return result, true
}

// parseFilter reads the filter query parameters. Missing parameters
// default to the whole table: all inverters, full date range.
func (s *Server) parseFilter(r *http.Request) (types.FilterCriteria, error) {
	criteria := types.FilterCriteria{}

	if raw := r.URL.Query().Get("inverters"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				criteria.Inverters = append(criteria.Inverters, id)
			}
		}
	} else {
		criteria.Inverters = s.table.InverterIDs()
	}

	min, max, ok := s.table.DateRange()
	if !ok {
		// empty table: leave zero dates, the pipeline reports no data
		min, max = time.Time{}, time.Time{}
	}
	criteria.Start, criteria.End = min, max

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return types.FilterCriteria{}, fmt.Errorf("invalid start date: %w", err)
		}
		criteria.Start = start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return types.FilterCriteria{}, fmt.Errorf("invalid end date: %w", err)
		}
		criteria.End = end
	}

	return criteria, nil
}
