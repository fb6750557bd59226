// Package http exposes the prediction API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/predictor"
)

// maxGridCells bounds one grid sweep request.
const maxGridCells = 2500

// Calculator scores fishing zones for one species/vessel pairing.
type Calculator interface {
	Predict(ctx context.Context, lat, lon float64, forecastDays int) (predictor.Prediction, error)
	PredictGrid(ctx context.Context, box domain.BoundingBox, resolutionDeg float64, forecastDays int) ([]predictor.GridCell, error)
}

// CalculatorFactory builds a calculator for the requested target species
// and vessel type. Species may be empty for the generic habitat curve.
type CalculatorFactory func(species string, vessel domain.VesselType) Calculator

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Deps are the collaborators and defaults of the API server.
type Deps struct {
	Factory        CalculatorFactory
	Weather        predictor.WeatherSource // optional; /v1/operability answers 503 without it
	Ready          ReadinessChecker
	DefaultVessel  domain.VesselType
	ForecastDays   int
	GridResolution float64
}

// Server exposes the prediction API over HTTP.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the API server with all routes registered.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/predict", s.handlePredict)
	mux.HandleFunc("POST /v1/predict/grid", s.handlePredictGrid)
	mux.HandleFunc("GET /v1/operability", s.handleOperability)
	mux.HandleFunc("GET /v1/species", s.handleSpecies)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type predictRequest struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Species      string  `json:"species,omitempty"`
	Vessel       string  `json:"vessel,omitempty"`
	ForecastDays int     `json:"forecast_days,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	calc := s.deps.Factory(req.Species, s.vessel(req.Vessel))
	pred, err := calc.Predict(r.Context(), req.Lat, req.Lon, s.forecastDays(req.ForecastDays))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

type gridRequest struct {
	LatMin       float64 `json:"lat_min"`
	LatMax       float64 `json:"lat_max"`
	LonMin       float64 `json:"lon_min"`
	LonMax       float64 `json:"lon_max"`
	Resolution   float64 `json:"resolution,omitempty"`
	Species      string  `json:"species,omitempty"`
	Vessel       string  `json:"vessel,omitempty"`
	ForecastDays int     `json:"forecast_days,omitempty"`
}

type gridResponse struct {
	Cells []predictor.GridCell `json:"cells"`
	Count int                  `json:"count"`
}

func (s *Server) handlePredictGrid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	box, err := domain.NewBoundingBox(req.LatMin, req.LatMax, req.LonMin, req.LonMax)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resolution := req.Resolution
	if resolution <= 0 {
		resolution = s.deps.GridResolution
	}
	if cells := estimateCells(box, resolution); cells > maxGridCells {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("grid of %d cells exceeds the %d cell limit, raise the resolution", cells, maxGridCells))
		return
	}

	calc := s.deps.Factory(req.Species, s.vessel(req.Vessel))
	cells, err := calc.PredictGrid(r.Context(), box, resolution, s.forecastDays(req.ForecastDays))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, gridResponse{Cells: cells, Count: len(cells)})
}

func (s *Server) handleOperability(w http.ResponseWriter, r *http.Request) {
	if s.deps.Weather == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no weather source configured"))
		return
	}

	lat, err := queryFloat(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	days := s.deps.ForecastDays
	if v := r.URL.Query().Get("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid days: %q", v))
			return
		}
	}

	inputs, err := s.deps.Weather.FetchForecast(r.Context(), lat, lon, days)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Errorf("fetch forecast: %w", err))
		return
	}

	vessel := s.vessel(r.URL.Query().Get("vessel"))
	result := domain.NewOperabilityCalculator(vessel).Calculate(inputs)
	writeJSON(w, http.StatusOK, result)
}

type speciesResponse struct {
	Species any `json:"species"`
	Count   int `json:"count"`
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if v := q.Get("temperature"); v != "" {
		sst, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid temperature: %q", v))
			return
		}
		matches := domain.SpeciesForTemperature(sst, 60)
		writeJSON(w, http.StatusOK, speciesResponse{Species: matches, Count: len(matches)})
		return
	}

	if v := q.Get("category"); v != "" {
		matches := domain.SpeciesByCategory(domain.FishCategory(v))
		writeJSON(w, http.StatusOK, speciesResponse{Species: matches, Count: len(matches)})
		return
	}

	all := domain.AllSpecies()
	writeJSON(w, http.StatusOK, speciesResponse{Species: all, Count: len(all)})
}

func (s *Server) vessel(requested string) domain.VesselType {
	if requested == "" {
		return s.deps.DefaultVessel
	}
	return domain.ParseVesselType(requested)
}

func (s *Server) forecastDays(requested int) int {
	if requested < 1 {
		return s.deps.ForecastDays
	}
	return requested
}

func estimateCells(box domain.BoundingBox, resolution float64) int {
	if resolution <= 0 {
		return 0
	}
	latCells := int((box.LatMax-box.LatMin)/resolution) + 1
	lonCells := int((box.LonMax-box.LonMin)/resolution) + 1
	return latCells * lonCells
}

func queryFloat(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return f, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
