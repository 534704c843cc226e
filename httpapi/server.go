// Package httpapi exposes a colorimeter session to a browser UI as a JSON
// HTTP API. It returns pure data for rendering; all chart drawing and DOM
// work belongs to the out-of-scope presentation layer.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taggatron/Colorimetrybetalain/engine"
	"github.com/taggatron/Colorimetrybetalain/measure"
	"github.com/taggatron/Colorimetrybetalain/results"
)

// Server serves the session API over HTTP.
type Server struct {
	engine *engine.Engine
	log    zerolog.Logger
	mux    *http.ServeMux

	// baseCtx parents the bleaching and auto-calibration loops; request
	// contexts end with the request, which would kill the tickers.
	baseCtx context.Context
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.log = logger.With().Str("component", "httpapi").Logger()
	}
}

// WithBaseContext sets the context that outlives requests and parents the
// background loops; cancelling it stops them.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// NewServer creates an API server over the given session.
func NewServer(e *engine.Engine, opts ...Option) *Server {
	s := &Server{
		engine:  e,
		log:     zerolog.Nop(),
		mux:     http.NewServeMux(),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/conditions", s.handleGetConditions)
	s.mux.HandleFunc("POST /api/conditions", s.handleSetConditions)
	s.mux.HandleFunc("GET /api/reading", s.handleReading)
	s.mux.HandleFunc("POST /api/measure", s.handleMeasure)
	s.mux.HandleFunc("GET /api/scan", s.handleScan)
	s.mux.HandleFunc("GET /api/calibration", s.handleCalibration)
	s.mux.HandleFunc("POST /api/calibration/clear", s.handleClearCalibration)
	s.mux.HandleFunc("GET /api/calibration/csv", s.handleCalibrationCSV)
	s.mux.HandleFunc("POST /api/autocal/start", s.handleAutoCalStart)
	s.mux.HandleFunc("POST /api/autocal/stop", s.handleAutoCalStop)
	s.mux.HandleFunc("POST /api/bleach/start", s.handleBleachStart)
	s.mux.HandleFunc("POST /api/bleach/stop", s.handleBleachStop)
	s.mux.HandleFunc("GET /api/bleach/series", s.handleBleachSeries)
	s.mux.HandleFunc("POST /api/unknown", s.handleUnknown)
	s.mux.HandleFunc("POST /api/unknown/clear", s.handleUnknownClear)
	s.mux.HandleFunc("GET /api/report", s.handleReport)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

type statusResponse struct {
	SessionID        string `json:"sessionId"`
	Bleaching        bool   `json:"bleaching"`
	AutoCalibrating  bool   `json:"autoCalibrating"`
	CalibrationCount int    `json:"calibrationCount"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{
		SessionID:        s.engine.SessionID().String(),
		Bleaching:        s.engine.IsBleaching(),
		AutoCalibrating:  s.engine.IsAutoCalibrating(),
		CalibrationCount: s.engine.CalibrationSet().Len(),
	})
}

func (s *Server) handleGetConditions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Conditions())
}

func (s *Server) handleSetConditions(w http.ResponseWriter, r *http.Request) {
	var c measure.Conditions
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid conditions: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.SetConditions(c))
}

func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	reading := s.engine.Simulate()
	s.writeJSON(w, http.StatusOK, results.NewReadingView(reading.Absorbance, reading.Transmittance, reading.DetectorSignal))
}

type measureResponse struct {
	Reading results.ReadingView `json:"reading"`
	Fit     results.FitStats    `json:"fit"`
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	reading, fit := s.engine.Measure()
	s.writeJSON(w, http.StatusOK, measureResponse{
		Reading: results.NewReadingView(reading.Absorbance, reading.Transmittance, reading.DetectorSignal),
		Fit:     results.FormatFit(fit),
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	eps, abs := s.engine.Scan()
	s.writeJSON(w, http.StatusOK, results.SpectrumView{Epsilon: eps, Absorbance: abs})
}

func (s *Server) handleCalibration(w http.ResponseWriter, r *http.Request) {
	set := s.engine.CalibrationSet()
	fit := s.engine.Fit()
	p := s.engine.Profile()
	s.writeJSON(w, http.StatusOK, results.CalibrationView{
		Points:  set.Points(),
		Fit:     fit,
		FitLine: fit.LineEndpoints(p.ConcentrationMin, p.ConcentrationMax),
		Stats:   results.FormatFit(fit),
	})
}

func (s *Server) handleClearCalibration(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearCalibration()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalibrationCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="calibration.csv"`)
	if _, err := w.Write([]byte(s.engine.CalibrationSet().CSV(false) + "\n")); err != nil {
		s.log.Error().Err(err).Msg("write csv")
	}
}

func (s *Server) handleAutoCalStart(w http.ResponseWriter, r *http.Request) {
	if !s.engine.StartAutoCal(s.baseCtx) {
		s.writeError(w, http.StatusConflict, "auto-calibration already running")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleAutoCalStop(w http.ResponseWriter, r *http.Request) {
	s.engine.StopAutoCal()
	w.WriteHeader(http.StatusNoContent)
}

type bleachStartRequest struct {
	RatePerMinute float64 `json:"ratePerMinute"`
}

func (s *Server) handleBleachStart(w http.ResponseWriter, r *http.Request) {
	var req bleachStartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}
	if !s.engine.StartBleach(s.baseCtx, req.RatePerMinute) {
		s.writeError(w, http.StatusConflict, "bleaching already running")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleBleachStop(w http.ResponseWriter, r *http.Request) {
	s.engine.StopBleach()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBleachSeries(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Series())
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.ProbeUnknown())
}

func (s *Server) handleUnknownClear(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearProbes()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, results.NewBuilder().FromEngine(s.engine).Build())
}
