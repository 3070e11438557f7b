package sim

import (
	"fmt"
	"math"
)

// Advance computes one simulation step and returns the next state. It is
// pure: no I/O, no hidden state, and deterministic for a given decay
// coefficient. dt is the simulated time step in seconds; dt=1 gives the
// canonical per-tick arithmetic.
//
// Red phase: idling vehicles add CO2 and CO and consume O2, all scaled by
// the vehicle count. Green phase: CO2 and CO decay multiplicatively toward
// their baselines by decay^dt, and O2 recovers additively. Every resulting
// level is clamped to [MinLevel, MaxLevel].
func Advance(s State, cfg Config, phase Phase, dt, decay float64) (State, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	if decay <= 0 || decay >= 1 {
		return State{}, fmt.Errorf("%w: decay coefficient must be in (0, 1), got %v", ErrInvalidConfig, decay)
	}
	if dt < 0 {
		return State{}, fmt.Errorf("%w: dt must be non-negative, got %v", ErrInvalidConfig, dt)
	}

	vehicles := float64(cfg.Vehicles)
	next := s

	if phase.IsRed() {
		next.CO2 += vehicles * cfg.CO2RatePerVehicle * dt
		next.CO += vehicles * cfg.CORatePerVehicle * dt
		next.O2 -= vehicles * cfg.O2ConsumptionRate * dt
	} else {
		k := decay
		if dt != 1 {
			k = math.Pow(decay, dt)
		}
		next.CO2 = math.Max(cfg.BaselineCO2, next.CO2*k)
		next.CO = math.Max(cfg.BaselineCO, next.CO*k)
		next.O2 += cfg.O2RecoveryRate * dt
	}

	next.CO2 = clamp(next.CO2)
	next.CO = clamp(next.CO)
	next.O2 = clamp(next.O2)

	return next, nil
}

func clamp(v float64) float64 {
	return math.Min(MaxLevel, math.Max(MinLevel, v))
}
