package runtime

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	Steps           prometheus.Counter
	Batches         prometheus.Counter
	PersistWarnings *prometheus.CounterVec
	MaxDigits       *prometheus.GaugeVec
	Runs            *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg (if not nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stoptime_steps_total",
			Help: "Elementary Collatz steps computed",
		}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stoptime_batches_total",
			Help: "Completed step batches",
		}),
		PersistWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stoptime_persist_warnings_total",
			Help: "Checkpoint load/save failures that did not stop the computation",
		}, []string{"operation"}),
		MaxDigits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stoptime_max_digits",
			Help: "Largest decimal digit count observed on the trajectory",
		}, []string{"digits"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stoptime_runs_total",
			Help: "Engine invocations by outcome",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Steps, m.Batches, m.PersistWarnings, m.MaxDigits, m.Runs)
	}
	return m
}
