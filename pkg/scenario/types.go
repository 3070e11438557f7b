package scenario

import (
	"github.com/rmax-ai/smoglight/pkg/sim"
)

// Scenario describes a deterministic headless run: a configuration, a
// sequence of signal legs and the invariants the outcome must satisfy.
type Scenario struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Seed        int64      `json:"seed"` // Deterministic seed
	Dt          float64    `json:"dt"`   // Time step per tick, default 1s
	Config      sim.Config `json:"config"`
	Legs        []Leg      `json:"legs"`
	Invariants  []Invariant `json:"invariants,omitempty"`
}

// Leg is one stretch of a fixed signal phase.
type Leg struct {
	Phase sim.Phase `json:"phase"`
	Ticks int       `json:"ticks"`
}

// Invariant is an assertion over the run's aggregate metrics.
// Metrics: final_co2, final_co, final_o2, peak_co2, peak_co, min_o2, ticks.
type Invariant struct {
	Metric    string  `json:"metric"`
	Condition string  `json:"condition"` // ">", "<", ">=", "<=", "=="
	Value     float64 `json:"value"`
}

// Result captures the final state of the run for reporting.
type Result struct {
	ScenarioName string            `json:"scenario_name"`
	Seed         int64             `json:"seed"`
	Ticks        int               `json:"ticks"`
	Final        sim.State         `json:"final"`
	PeakCO2      float64           `json:"peak_co2"`
	PeakCO       float64           `json:"peak_co"`
	MinO2        float64           `json:"min_o2"`
	Invariants   []InvariantResult `json:"invariants"`
	Success      bool              `json:"success"`
}

type InvariantResult struct {
	Metric    string `json:"metric"`
	Condition string `json:"condition"`
	Expected  string `json:"expected"` // e.g. "> 50"
	Actual    string `json:"actual"`   // e.g. "72.40"
	Passed    bool   `json:"passed"`
}
