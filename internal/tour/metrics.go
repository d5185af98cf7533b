package tour

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricTourStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_started_total",
		Help: "Tours started by role",
	}, []string{"role"})

	metricTourCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_completed_total",
		Help: "Tours finished through the last step, by role",
	}, []string{"role"})

	metricTourSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tour_skipped_total",
		Help: "Tours abandoned before the last step, by role",
	}, []string{"role"})

	metricStepsShown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tour_steps_shown_total",
		Help: "Tour steps presented, counting repeats and backtracking",
	})
)
