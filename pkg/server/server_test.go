package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pvboard/pvboard/pkg/plant"
	"github.com/pvboard/pvboard/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Load(ctx context.Context) (types.ReadingTable, error) {
	args := m.Called(ctx)
	var table types.ReadingTable
	if v := args.Get(0); v != nil {
		table = v.(types.ReadingTable)
	}
	return table, args.Error(1)
}

func day(d int) time.Time {
	return time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC)
}

func testTable() types.ReadingTable {
	return types.ReadingTable{
		{Timestamp: day(1).Add(8 * time.Hour), InverterID: "Inverter-A", PowerACKW: 10, IrradianceWM2: 400},
		{Timestamp: day(1).Add(8*time.Hour + 15*time.Minute), InverterID: "Inverter-A", PowerACKW: 20, IrradianceWM2: 800},
		{Timestamp: day(2).Add(12 * time.Hour), InverterID: "Inverter-B", PowerACKW: 30, IrradianceWM2: 950},
		{Timestamp: day(2).Add(22 * time.Hour), InverterID: "Inverter-B", PowerACKW: 0, IrradianceWM2: 0},
	}
}

func newTestServer(table types.ReadingTable) *Server {
	profile := plant.Default()
	return &Server{
		profile:    &profile,
		table:      table,
		serverName: "pvboard",
	}
}

func TestHandleKPIs(t *testing.T) {
	s := newTestServer(testTable())

	t.Run("defaults cover the whole table", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/kpis", nil)
		rr := httptest.NewRecorder()
		s.handleKPIs(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var snap types.KPISnapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
		assert.Equal(t, 15.0, snap.TotalEnergyKWH)
		assert.Equal(t, 30.0, snap.PeakPowerKW)
		assert.Equal(t, 950.0, snap.PeakIrradianceWM2)
		// 15 kWh over 2 × 50 kW nameplate
		assert.Equal(t, 0.15, snap.PeakSunHours)
	})

	t.Run("single inverter halves the nameplate denominator", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/kpis?inverters=Inverter-A", nil)
		rr := httptest.NewRecorder()
		s.handleKPIs(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var snap types.KPISnapshot
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
		assert.Equal(t, 7.5, snap.TotalEnergyKWH)
		assert.Equal(t, 0.15, snap.PeakSunHours)
	})

	t.Run("no matching rows yields a distinct no-data signal", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/kpis?inverters=Inverter-Z", nil)
		rr := httptest.NewRecorder()
		s.handleKPIs(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "no data for the selected filters", body.Error)
	})

	t.Run("inverted range is a user error", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/kpis?start=2025-07-02&end=2025-07-01", nil)
		rr := httptest.NewRecorder()
		s.handleKPIs(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unparseable date is a user error", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/kpis?start=yesterday", nil)
		rr := httptest.NewRecorder()
		s.handleKPIs(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleListInverters(t *testing.T) {
	s := newTestServer(testTable())
	req := httptest.NewRequest("GET", "/api/inverters", nil)
	rr := httptest.NewRecorder()
	s.handleListInverters(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp invertersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Inverter-A", "Inverter-B"}, resp.Inverters)
	assert.Equal(t, "2025-07-01", resp.MinDate)
	assert.Equal(t, "2025-07-02", resp.MaxDate)
}

func TestHandleReadings(t *testing.T) {
	s := newTestServer(testTable())
	req := httptest.NewRequest("GET", "/api/readings?start=2025-07-01&end=2025-07-01", nil)
	rr := httptest.NewRecorder()
	s.handleReadings(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var table types.ReadingTable
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &table))
	require.Len(t, table, 2)
	assert.Equal(t, "Inverter-A", table[0].InverterID)
}

func TestHandlePowerSeries(t *testing.T) {
	s := newTestServer(testTable())
	req := httptest.NewRequest("GET", "/api/series/power", nil)
	rr := httptest.NewRecorder()
	s.handlePowerSeries(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var series []types.PowerSeries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &series))
	require.Len(t, series, 2)
	assert.Equal(t, "Inverter-A", series[0].InverterID)
	assert.Len(t, series[0].Points, 2)
}

func TestHandleScatterExcludesNight(t *testing.T) {
	s := newTestServer(testTable())
	req := httptest.NewRequest("GET", "/api/analysis/scatter", nil)
	rr := httptest.NewRecorder()
	s.handleScatter(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var points []types.ScatterPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &points))
	// the 0 W/m² night reading falls under the daylight threshold
	require.Len(t, points, 3)
	for _, p := range points {
		assert.Greater(t, p.IrradianceWM2, 50.0)
	}
}

func TestHandleDistribution(t *testing.T) {
	s := newTestServer(testTable())
	req := httptest.NewRequest("GET", "/api/analysis/distribution", nil)
	rr := httptest.NewRecorder()
	s.handleDistribution(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var summaries []types.DistributionSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, 1, summaries[1].Count)
}

func TestSetupHandlerHealthz(t *testing.T) {
	s := newTestServer(testTable())
	handler := s.setupHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.Equal(t, "pvboard", rr.Header().Get("Server"))
}

func TestRunFailsWhenLoadFails(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(nil, errors.New("disk gone"))

	profile := plant.Default()
	s := &Server{source: src, profile: &profile}

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load readings")
	src.AssertExpectations(t)
}
