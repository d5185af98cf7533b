package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_state_transitions_total",
		Help: "Total assistant state transitions by from/to state",
	}, []string{"from", "to"})

	metricIdleSleeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_idle_sleeps_total",
		Help: "Times the assistant fell asleep after the idle timeout",
	})

	metricSettingsUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_settings_updates_total",
		Help: "Total settings mutations",
	})
)
