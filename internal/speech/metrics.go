package speech

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speech_synthesis_total",
		Help: "Total speech requests by path and status",
	}, []string{"path", "status"})

	metricRemoteLatencyMS = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "speech_remote_latency_ms",
		Help:    "Latency of remote TTS synthesis calls",
		Buckets: prometheus.ExponentialBuckets(50, 1.6, 10),
	})

	metricPreemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speech_preemptions_total",
		Help: "Utterances cut off by a newer speak or an explicit stop",
	})
)
