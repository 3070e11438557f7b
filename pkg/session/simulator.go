package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rmax-ai/smoglight/pkg/sim"
)

// Simulator owns the single per-session simulation instance: state, config,
// phase and the running flag. The core update function is pure; the mutex
// here only serializes the daemon's HTTP handlers and ticker onto the one
// instance. After every mutation the latest reading is published to the
// ReadingStore and the Prometheus gauges are refreshed.
type Simulator struct {
	mu      sync.Mutex
	cfg     sim.Config
	state   sim.State
	phase   sim.Phase
	decay   sim.DecaySource
	running bool
	tick    uint64
	store   ReadingStore
}

// NewSimulator creates a session at the fresh-air baseline with the signal
// red, matching how an idle queue builds up before the first green.
// A nil store falls back to an in-memory one.
func NewSimulator(cfg sim.Config, decay sim.DecaySource, store ReadingStore) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		store = NewMemoryReadingStore()
	}
	s := &Simulator{
		cfg:   cfg,
		state: cfg.BaselineState(),
		phase: sim.PhaseRed,
		decay: decay,
		store: store,
	}
	s.publish()
	return s, nil
}

// Step advances the simulation by dt seconds and returns the new reading.
func (s *Simulator) Step(dt float64) (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := sim.Advance(s.state, s.cfg, s.phase, dt, s.decay.Coefficient())
	if err != nil {
		return Reading{}, err
	}
	s.state = next
	s.tick++
	SmoglightTicksTotal.Inc()
	return s.publish(), nil
}

// Reading returns the current reading without advancing.
func (s *Simulator) Reading() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading()
}

// Config returns a copy of the session configuration.
func (s *Simulator) Config() sim.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetPhase sets the signal phase. The simulator is phase-agnostic beyond
// storing the value; the next Step reads it.
func (s *Simulator) SetPhase(p sim.Phase) Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	return s.publish()
}

// TogglePhase flips red to green and back, returning the new reading.
func (s *Simulator) TogglePhase() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.IsRed() {
		s.phase = sim.PhaseGreen
	} else {
		s.phase = sim.PhaseRed
	}
	return s.publish()
}

// SetVehicles updates the vehicle count between ticks.
func (s *Simulator) SetVehicles(n int) (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		return Reading{}, fmt.Errorf("%w: vehicles must be non-negative, got %d", sim.ErrInvalidConfig, n)
	}
	s.cfg.Vehicles = n
	return s.publish(), nil
}

// SetRunning starts or pauses the auto-refresh loop's stepping.
func (s *Simulator) SetRunning(running bool) Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
	return s.publish()
}

// Running reports whether the ticker should advance the session.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Reset returns the session to the fresh-air baseline and zeroes the tick
// counter. Phase and vehicle count are left as the user set them.
func (s *Simulator) Reset() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.cfg.BaselineState()
	s.tick = 0
	return s.publish()
}

// Snapshot captures the session for persistence.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:   s.state,
		Phase:   s.phase,
		Config:  s.cfg,
		Tick:    s.tick,
		TsSaved: time.Now(),
	}
}

// Restore replaces the session with a previously saved snapshot.
func (s *Simulator) Restore(snap Snapshot) error {
	if err := snap.Config.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snap.State
	s.phase = snap.Phase
	s.cfg = snap.Config
	s.tick = snap.Tick
	s.publish()
	return nil
}

// reading builds the current Reading. Callers must hold the mutex.
func (s *Simulator) reading() Reading {
	return Reading{
		State:    s.state,
		Phase:    s.phase,
		Vehicles: s.cfg.Vehicles,
		Running:  s.running,
		Tick:     s.tick,
		Ts:       time.Now(),
	}
}

// publish pushes the latest reading to the store and metrics.
// Callers must hold the mutex.
func (s *Simulator) publish() Reading {
	r := s.reading()
	s.store.Set(r)

	SmoglightGasLevel.WithLabelValues("co2").Set(r.State.CO2)
	SmoglightGasLevel.WithLabelValues("co").Set(r.State.CO)
	SmoglightGasLevel.WithLabelValues("o2").Set(r.State.O2)
	if r.Phase.IsRed() {
		SmoglightSignalPhase.Set(1)
	} else {
		SmoglightSignalPhase.Set(0)
	}
	SmoglightVehicles.Set(float64(r.Vehicles))

	return r
}
