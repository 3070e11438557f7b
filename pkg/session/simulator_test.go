package session

import (
	"errors"
	"testing"

	"github.com/rmax-ai/smoglight/pkg/sim"
)

func newTestSimulator(t *testing.T) (*Simulator, *MemoryReadingStore) {
	t.Helper()
	store := NewMemoryReadingStore()
	s, err := NewSimulator(sim.DefaultConfig(), sim.Fixed(0.9), store)
	if err != nil {
		t.Fatalf("NewSimulator() error = %v", err)
	}
	return s, store
}

func TestNewSimulator_StartsAtBaseline(t *testing.T) {
	s, store := newTestSimulator(t)

	r := s.Reading()
	if r.State.CO2 != 0 || r.State.CO != 0 || r.State.O2 != 100 {
		t.Errorf("initial state = %+v, want fresh-air baseline", r.State)
	}
	if r.Phase != sim.PhaseRed {
		t.Errorf("initial phase = %q, want red", r.Phase)
	}
	if r.Tick != 0 {
		t.Errorf("initial tick = %d, want 0", r.Tick)
	}

	latest, ok := store.Latest()
	if !ok {
		t.Fatal("store has no reading after construction")
	}
	if latest.State != r.State {
		t.Errorf("store reading = %+v, want %+v", latest.State, r.State)
	}
}

func TestNewSimulator_InvalidConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Vehicles = -5
	if _, err := NewSimulator(cfg, sim.Fixed(0.9), nil); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("NewSimulator() error = %v, want ErrInvalidConfig", err)
	}
}

func TestSimulator_StepPublishes(t *testing.T) {
	s, store := newTestSimulator(t)

	r, err := s.Step(1)
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if r.Tick != 1 {
		t.Errorf("tick = %d, want 1", r.Tick)
	}
	if r.State.CO2 != 30 { // 12 vehicles * 2.5 per tick
		t.Errorf("CO2 after one red tick = %v, want 30", r.State.CO2)
	}

	latest, ok := store.Latest()
	if !ok || latest.Tick != 1 {
		t.Errorf("store reading tick = %d (ok=%v), want 1", latest.Tick, ok)
	}
}

func TestSimulator_PhaseControls(t *testing.T) {
	s, _ := newTestSimulator(t)

	if r := s.TogglePhase(); r.Phase != sim.PhaseGreen {
		t.Errorf("TogglePhase() = %q, want green", r.Phase)
	}
	if r := s.TogglePhase(); r.Phase != sim.PhaseRed {
		t.Errorf("TogglePhase() = %q, want red", r.Phase)
	}
	if r := s.SetPhase(sim.PhaseGreen); r.Phase != sim.PhaseGreen {
		t.Errorf("SetPhase(green) = %q, want green", r.Phase)
	}
}

func TestSimulator_SetVehicles(t *testing.T) {
	s, _ := newTestSimulator(t)

	r, err := s.SetVehicles(40)
	if err != nil {
		t.Fatalf("SetVehicles() error = %v", err)
	}
	if r.Vehicles != 40 {
		t.Errorf("vehicles = %d, want 40", r.Vehicles)
	}

	if _, err := s.SetVehicles(-1); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("SetVehicles(-1) error = %v, want ErrInvalidConfig", err)
	}
}

func TestSimulator_Reset(t *testing.T) {
	s, _ := newTestSimulator(t)

	for i := 0; i < 5; i++ {
		if _, err := s.Step(1); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}

	r := s.Reset()
	if r.State != (sim.State{CO2: 0, CO: 0, O2: 100}) {
		t.Errorf("Reset() state = %+v, want baseline", r.State)
	}
	if r.Tick != 0 {
		t.Errorf("Reset() tick = %d, want 0", r.Tick)
	}
}

func TestSimulator_SnapshotRestore(t *testing.T) {
	s, _ := newTestSimulator(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Step(1); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	s.SetPhase(sim.PhaseGreen)
	snap := s.Snapshot()

	restored, err := NewSimulator(sim.DefaultConfig(), sim.Fixed(0.9), nil)
	if err != nil {
		t.Fatalf("NewSimulator() error = %v", err)
	}
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got := restored.Reading()
	if got.State != snap.State || got.Phase != snap.Phase || got.Tick != snap.Tick {
		t.Errorf("restored reading = %+v, want state %+v phase %q tick %d",
			got, snap.State, snap.Phase, snap.Tick)
	}

	bad := snap
	bad.Config.CO2RatePerVehicle = -1
	if err := restored.Restore(bad); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("Restore(bad config) error = %v, want ErrInvalidConfig", err)
	}
}

func TestSimulator_RunningFlag(t *testing.T) {
	s, _ := newTestSimulator(t)
	if s.Running() {
		t.Error("new session should start paused")
	}
	if r := s.SetRunning(true); !r.Running {
		t.Error("SetRunning(true) reading should report running")
	}
	if !s.Running() {
		t.Error("Running() = false after SetRunning(true)")
	}
}

func TestMemoryReadingStore(t *testing.T) {
	store := NewMemoryReadingStore()
	if _, ok := store.Latest(); ok {
		t.Error("empty store reported a reading")
	}
	store.Set(Reading{Vehicles: 7})
	if r, ok := store.Latest(); !ok || r.Vehicles != 7 {
		t.Errorf("Latest() = %+v (ok=%v), want vehicles 7", r, ok)
	}
	store.Clear()
	if _, ok := store.Latest(); ok {
		t.Error("cleared store reported a reading")
	}
}
