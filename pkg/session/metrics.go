package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SmoglightGasLevel tracks the current concentration level per gas
	SmoglightGasLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smoglight_gas_level",
			Help: "Current relative concentration level for a gas (0-100)",
		},
		[]string{"gas"},
	)

	// SmoglightSignalPhase tracks the current signal phase (1 = red, 0 = green)
	SmoglightSignalPhase = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoglight_signal_phase",
			Help: "Current signal phase: 1 when red, 0 when green",
		},
	)

	// SmoglightVehicles tracks the configured vehicle count
	SmoglightVehicles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoglight_vehicles",
			Help: "Number of vehicles waiting at the signal",
		},
	)

	// SmoglightTicksTotal tracks the number of simulation steps taken
	SmoglightTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smoglight_ticks_total",
			Help: "Total number of simulation steps advanced",
		},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(SmoglightGasLevel)
	prometheus.MustRegister(SmoglightSignalPhase)
	prometheus.MustRegister(SmoglightVehicles)
	prometheus.MustRegister(SmoglightTicksTotal)
}
