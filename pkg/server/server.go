package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"
	"github.com/pvboard/pvboard/pkg/dataset"
	"github.com/pvboard/pvboard/pkg/log"
	"github.com/pvboard/pvboard/pkg/plant"
	"github.com/pvboard/pvboard/pkg/types"
)

// Server handles the HTTP API for the PV performance dashboard. It
// loads the reading table once at startup and serves filtered views,
// KPI snapshots and chart series from it.
type Server struct {
	source  dataset.Source
	profile *plant.Profile
	table   types.ReadingTable

	listenAddr string
	httpServer *http.Server
	serverName string
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(src dataset.Source, profile *plant.Profile) *Server {
	srv := &Server{
		source:     src,
		profile:    profile,
		serverName: "pvboard",
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/inverters", s.handleListInverters)
	apiMux.HandleFunc("GET /api/readings", s.handleReadings)
	apiMux.HandleFunc("GET /api/kpis", s.handleKPIs)
	apiMux.HandleFunc("GET /api/series/power", s.handlePowerSeries)
	apiMux.HandleFunc("GET /api/series/irradiance", s.handleIrradianceSeries)
	apiMux.HandleFunc("GET /api/analysis/scatter", s.handleScatter)
	apiMux.HandleFunc("GET /api/analysis/distribution", s.handleDistribution)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiMux)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return s.serverNameMiddleware(gziphandler.GzipHandler(mux))
}

// Run loads the reading table, then starts the HTTP server and blocks
// until the context is canceled or an error occurs. It also handles
// graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	table, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load readings: %w", err)
	}
	s.table = table
	log.Ctx(ctx).InfoContext(ctx, "readings loaded", slog.Int("rows", len(table)))

	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capture server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) serverNameMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
