// Package metrics exposes the relay's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics
var (
	// ActiveClients tracks the number of entries currently registered.
	ActiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_clients",
			Help: "Number of clients currently registered with the relay",
		},
	)

	// QueueDepth tracks per-client send-queue depth at enqueue time.
	QueueDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_queue_depth",
			Help:    "Per-client send queue depth observed when the mixer enqueues a frame",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 49, 50},
		},
	)

	// FramesDroppedTotal tracks frames discarded by the drop-oldest
	// backpressure policy.
	FramesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_frames_dropped_total",
			Help: "Total frames discarded by the drop-oldest backpressure policy",
		},
	)

	// MixTickDuration tracks how long each mixer tick takes to drain,
	// mix, and fan out.
	MixTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_mix_tick_duration_seconds",
			Help:    "Mixer tick duration: drain, mix, and fan-out",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .02, .05},
		},
	)

	// MixTickInputFrames tracks how many contributing frames a tick
	// mixed.
	MixTickInputFrames = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_mix_tick_input_frames",
			Help:    "Number of contributing frames mixed per tick",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	// AcceptFailuresTotal tracks recoverable accept-loop failures.
	AcceptFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_accept_failures_total",
			Help: "Recoverable accept-loop failures by reason",
		},
		[]string{"reason"},
	)

	// ConnectionsThrottledTotal tracks connections rejected by the
	// per-IP accept-rate limiter.
	ConnectionsThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_connections_throttled_total",
			Help: "Connections rejected by the per-IP accept-rate limiter",
		},
	)
)
