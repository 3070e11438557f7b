package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmax-ai/smoglight/pkg/session"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := session.NewMemoryReadingStore()
	simulator, err := session.NewSimulator(sim.DefaultConfig(), sim.Fixed(0.9), store)
	if err != nil {
		t.Fatalf("NewSimulator() error = %v", err)
	}
	return NewServer(simulator, store, "")
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, req)
	return w
}

func decodeReading(t *testing.T, w *httptest.ResponseRecorder) session.Reading {
	t.Helper()
	var r session.Reading
	if err := json.NewDecoder(w.Body).Decode(&r); err != nil {
		t.Fatalf("failed to decode reading: %v", err)
	}
	return r
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("GET /v1/health status = %d, want 200", w.Code)
	}
}

func TestHandleState(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/v1/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/state status = %d, want 200", w.Code)
	}
	r := decodeReading(t, w)
	if r.Phase != sim.PhaseRed || r.State.O2 != 100 {
		t.Errorf("initial reading = %+v, want red phase at baseline", r)
	}
}

func TestHandleStep(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/v1/step", StepRequest{Dt: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/step status = %d, want 200", w.Code)
	}
	r := decodeReading(t, w)
	if r.Tick != 1 {
		t.Errorf("tick = %d, want 1", r.Tick)
	}
	if r.State.CO2 != 30 {
		t.Errorf("CO2 after one red tick = %v, want 30", r.State.CO2)
	}

	// Empty body defaults to dt=1.
	w = doRequest(t, s, http.MethodPost, "/v1/step", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/step (empty body) status = %d, want 200", w.Code)
	}
	if r := decodeReading(t, w); r.Tick != 2 {
		t.Errorf("tick = %d, want 2", r.Tick)
	}
}

func TestHandlePhase(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/v1/phase", PhaseRequest{Phase: "green"})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/phase status = %d, want 200", w.Code)
	}
	if r := decodeReading(t, w); r.Phase != sim.PhaseGreen {
		t.Errorf("phase = %q, want green", r.Phase)
	}

	w = doRequest(t, s, http.MethodPost, "/v1/phase", PhaseRequest{Phase: "yellow"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /v1/phase (yellow) status = %d, want 400", w.Code)
	}

	w = doRequest(t, s, http.MethodPost, "/v1/phase/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/phase/toggle status = %d, want 200", w.Code)
	}
	if r := decodeReading(t, w); r.Phase != sim.PhaseRed {
		t.Errorf("toggled phase = %q, want red", r.Phase)
	}
}

func TestHandleVehicles(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/v1/vehicles", VehiclesRequest{Count: 25})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/vehicles status = %d, want 200", w.Code)
	}
	if r := decodeReading(t, w); r.Vehicles != 25 {
		t.Errorf("vehicles = %d, want 25", r.Vehicles)
	}

	w = doRequest(t, s, http.MethodPost, "/v1/vehicles", VehiclesRequest{Count: -1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /v1/vehicles (-1) status = %d, want 400", w.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error == "" {
		t.Error("error response has empty message")
	}
}

func TestHandleRunAndReset(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/v1/run", RunRequest{Running: true})
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/run status = %d, want 200", w.Code)
	}
	if r := decodeReading(t, w); !r.Running {
		t.Error("running = false, want true")
	}

	doRequest(t, s, http.MethodPost, "/v1/step", nil)
	w = doRequest(t, s, http.MethodPost, "/v1/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /v1/reset status = %d, want 200", w.Code)
	}
	r := decodeReading(t, w)
	if r.Tick != 0 || r.State.CO2 != 0 {
		t.Errorf("reading after reset = %+v, want baseline", r)
	}
}

func TestHandleReading(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/v1/reading", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /v1/reading status = %d, want 200", w.Code)
	}
	r := decodeReading(t, w)
	if r.State.O2 != 100 {
		t.Errorf("published reading = %+v, want baseline", r)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/state"},
		{http.MethodGet, "/v1/step"},
		{http.MethodGet, "/v1/reset"},
		{http.MethodDelete, "/v1/vehicles"},
	}
	for _, tt := range tests {
		w := doRequest(t, s, tt.method, tt.path, nil)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, w.Code)
		}
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	secureHandler := withSecureHeaders(handler)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	secureHandler.ServeHTTP(w, req)

	expectedHeaders := map[string]string{
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Referrer-Policy":           "no-referrer",
	}

	for key, expected := range expectedHeaders {
		got := w.Header().Get(key)
		if got != expected {
			t.Errorf("Header %s: expected %q, got %q", key, expected, got)
		}
	}
}
