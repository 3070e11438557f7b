package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmax-ai/smoglight/pkg/session"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// Interfaces for dependencies to enable mocking

type SimulatorInterface interface {
	Reading() session.Reading
	Config() sim.Config
	Step(dt float64) (session.Reading, error)
	SetPhase(p sim.Phase) session.Reading
	TogglePhase() session.Reading
	SetVehicles(n int) (session.Reading, error)
	SetRunning(running bool) session.Reading
	Reset() session.Reading
}

// ReadingSource exposes the latest published reading (memory or Redis).
type ReadingSource interface {
	Latest() (session.Reading, bool)
}

// Server encapsulates the HTTP API server
type Server struct {
	sim      SimulatorInterface
	readings ReadingSource
	server   *http.Server
}

// NewServer creates a new API server instance
func NewServer(simulator SimulatorInterface, readings ReadingSource, addr string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		sim:      simulator,
		readings: readings,
	}

	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/config", s.handleConfig)
	mux.HandleFunc("/v1/reading", s.handleReading)
	mux.HandleFunc("/v1/step", s.handleStep)
	mux.HandleFunc("/v1/phase", s.handlePhase)
	mux.HandleFunc("/v1/phase/toggle", s.handlePhaseToggle)
	mux.HandleFunc("/v1/vehicles", s.handleVehicles)
	mux.HandleFunc("/v1/run", s.handleRun)
	mux.HandleFunc("/v1/reset", s.handleReset)

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := withLogging(withRecovery(withSecureHeaders(mux)))

	if addr == "" {
		addr = ":8094"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	fmt.Printf(`{"level":"info","msg":"server_starting","addr":"%s"}`+"\n", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println(`{"level":"info","msg":"server_stopping"}`)
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleState returns the current session reading.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, r, s.sim.Reading())
}

// handleConfig returns the session configuration.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, r, s.sim.Config())
}

// handleReading serves the latest published reading from the reading
// store, the same view external consumers see.
func (s *Server) handleReading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	reading, ok := s.readings.Latest()
	if !ok {
		http.Error(w, `{"error":"no_reading_published"}`, http.StatusNotFound)
		return
	}
	s.writeJSON(w, r, reading)
}

// handleStep advances the session by one discrete step.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	req := StepRequest{Dt: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
			return
		}
		if req.Dt == 0 {
			req.Dt = 1
		}
	}

	reading, err := s.sim.Step(req.Dt)
	if err != nil {
		s.writeSimError(w, r, err)
		return
	}

	fmt.Printf(`{"level":"info","msg":"step_advanced","trace_id":"%s","dt":%v,"tick":%d}`+"\n",
		getTraceID(r.Context()), req.Dt, reading.Tick)
	s.writeJSON(w, r, reading)
}

// handlePhase sets the signal phase explicitly.
func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req PhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	phase := sim.Phase(req.Phase)
	if phase != sim.PhaseRed && phase != sim.PhaseGreen {
		http.Error(w, `{"error":"phase_must_be_red_or_green"}`, http.StatusBadRequest)
		return
	}

	reading := s.sim.SetPhase(phase)
	fmt.Printf(`{"level":"info","msg":"phase_set","trace_id":"%s","phase":"%s"}`+"\n",
		getTraceID(r.Context()), phase)
	s.writeJSON(w, r, reading)
}

// handlePhaseToggle flips red to green and back.
func (s *Server) handlePhaseToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	reading := s.sim.TogglePhase()
	fmt.Printf(`{"level":"info","msg":"phase_toggled","trace_id":"%s","phase":"%s"}`+"\n",
		getTraceID(r.Context()), reading.Phase)
	s.writeJSON(w, r, reading)
}

// handleVehicles updates the vehicle count between ticks.
func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req VehiclesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	reading, err := s.sim.SetVehicles(req.Count)
	if err != nil {
		s.writeSimError(w, r, err)
		return
	}

	fmt.Printf(`{"level":"info","msg":"vehicles_set","trace_id":"%s","count":%d}`+"\n",
		getTraceID(r.Context()), req.Count)
	s.writeJSON(w, r, reading)
}

// handleRun starts or pauses the auto-refresh loop.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	reading := s.sim.SetRunning(req.Running)
	fmt.Printf(`{"level":"info","msg":"run_set","trace_id":"%s","running":%t}`+"\n",
		getTraceID(r.Context()), req.Running)
	s.writeJSON(w, r, reading)
}

// handleReset returns the session to the fresh-air baseline.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}
	reading := s.sim.Reset()
	fmt.Printf(`{"level":"info","msg":"session_reset","trace_id":"%s"}`+"\n", getTraceID(r.Context()))
	s.writeJSON(w, r, reading)
}

// writeSimError maps core errors onto HTTP statuses: configuration errors
// are the caller's fault (400), anything else is internal.
func (s *Server) writeSimError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sim.ErrInvalidConfig) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
		return
	}
	fmt.Printf(`{"level":"error","msg":"step_failed","trace_id":"%s","error":"%v"}`+"\n",
		getTraceID(r.Context()), err)
	http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n",
			getTraceID(r.Context()), err)
	}
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Printf(`{"level":"error","msg":"panic_recovered","error":"%v","path":"%s"}`+"\n", err, r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		// Wrap writer to capture status code
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		fmt.Printf(`{"level":"info","msg":"http_request","trace_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`+"\n",
			traceID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback if random fails (unlikely)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		next.ServeHTTP(w, r)
	})
}
