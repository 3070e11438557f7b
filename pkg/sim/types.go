package sim

import (
	"errors"
	"fmt"
)

// MinLevel and MaxLevel bound every concentration value. Advance clamps
// into this range after each step, so long red or green streaks saturate
// instead of growing without bound or going negative.
const (
	MinLevel = 0.0
	MaxLevel = 100.0
)

// Phase is the binary signal state. Red means vehicles are idling and
// emitting; anything else behaves as green (traffic flowing, air clearing).
type Phase string

const (
	PhaseRed   Phase = "red"
	PhaseGreen Phase = "green"
)

// IsRed reports whether the phase is the idle/emitting state.
func (p Phase) IsRed() bool {
	return p == PhaseRed
}

// State holds the three gas concentration levels around the intersection.
// All values are relative, unit-less and stay within [MinLevel, MaxLevel].
type State struct {
	CO2 float64 `json:"co2"`
	CO  float64 `json:"co"`
	O2  float64 `json:"o2"`
}

// Config holds the per-session simulation parameters. It is immutable for
// the lifetime of a session except for Vehicles, which the presentation
// layer may change between ticks.
type Config struct {
	Vehicles          int     `json:"vehicles"`
	CO2RatePerVehicle float64 `json:"co2_rate_per_vehicle"`
	CORatePerVehicle  float64 `json:"co_rate_per_vehicle"`
	O2ConsumptionRate float64 `json:"o2_consumption_rate"`
	O2RecoveryRate    float64 `json:"o2_recovery_rate"`

	// Decay coefficient range for green-phase dispersion. Coefficients are
	// drawn from [DecayMin, DecayMax] and must stay strictly below 1 so a
	// green phase always disperses.
	DecayMin float64 `json:"decay_min"`
	DecayMax float64 `json:"decay_max"`

	// Baselines are the fresh-air floors a green phase decays toward.
	BaselineCO2 float64 `json:"baseline_co2"`
	BaselineCO  float64 `json:"baseline_co"`
	BaselineO2  float64 `json:"baseline_o2"`
}

// ErrInvalidConfig is returned when configuration inputs are out of domain.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks that the configuration is in domain. Negative vehicle
// counts or rates are caller errors, never silently recovered.
func (c Config) Validate() error {
	if c.Vehicles < 0 {
		return fmt.Errorf("%w: vehicles must be non-negative, got %d", ErrInvalidConfig, c.Vehicles)
	}
	rates := []struct {
		name  string
		value float64
	}{
		{"co2_rate_per_vehicle", c.CO2RatePerVehicle},
		{"co_rate_per_vehicle", c.CORatePerVehicle},
		{"o2_consumption_rate", c.O2ConsumptionRate},
		{"o2_recovery_rate", c.O2RecoveryRate},
	}
	for _, r := range rates {
		if r.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, r.name, r.value)
		}
	}
	if c.DecayMin <= 0 || c.DecayMax < c.DecayMin || c.DecayMax >= 1 {
		return fmt.Errorf("%w: decay range must satisfy 0 < min <= max < 1, got [%v, %v]", ErrInvalidConfig, c.DecayMin, c.DecayMax)
	}
	return nil
}

// DefaultConfig returns the demo tuning: a dozen idling vehicles and the
// emission rates the model was calibrated with.
func DefaultConfig() Config {
	return Config{
		Vehicles:          12,
		CO2RatePerVehicle: 2.5,
		CORatePerVehicle:  1.6,
		O2ConsumptionRate: 0.8,
		O2RecoveryRate:    0.8,
		DecayMin:          0.85,
		DecayMax:          0.95,
		BaselineCO2:       0,
		BaselineCO:        0,
		BaselineO2:        100,
	}
}

// BaselineState returns the fresh-air starting state for the config:
// no accumulated CO2/CO, full O2.
func (c Config) BaselineState() State {
	return State{
		CO2: c.BaselineCO2,
		CO:  c.BaselineCO,
		O2:  c.BaselineO2,
	}
}
