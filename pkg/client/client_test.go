package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmax-ai/smoglight/pkg/session"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

func TestClient_GetState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/state" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(session.Reading{
			State:    sim.State{CO2: 12.5, O2: 88},
			Phase:    sim.PhaseRed,
			Vehicles: 12,
			Tick:     4,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	r, err := c.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if r.State.CO2 != 12.5 || r.Phase != sim.PhaseRed || r.Tick != 4 {
		t.Errorf("GetState() = %+v", r)
	}
}

func TestClient_SetVehicles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Count int `json:"count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("server failed to decode body: %v", err)
		}
		if body.Count != 33 {
			t.Errorf("count = %d, want 33", body.Count)
		}
		json.NewEncoder(w).Encode(session.Reading{Vehicles: body.Count})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	r, err := c.SetVehicles(context.Background(), 33)
	if err != nil {
		t.Fatalf("SetVehicles() error = %v", err)
	}
	if r.Vehicles != 33 {
		t.Errorf("vehicles = %d, want 33", r.Vehicles)
	}
}

func TestClient_BadRequestSurfacesConfigError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid configuration: vehicles must be non-negative, got -1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.SetVehicles(context.Background(), -1)
	if !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("SetVehicles(-1) error = %v, want ErrInvalidConfig", err)
	}
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("")
	if c.endpoint != "http://127.0.0.1:8094" {
		t.Errorf("default endpoint = %s", c.endpoint)
	}
}
