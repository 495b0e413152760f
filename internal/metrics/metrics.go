// Package metrics holds the Prometheus collectors of the signaling core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Call outcomes used as the "outcome" label of Calls.
const (
	OutcomeRinging  = "ringing"
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeEnded    = "ended"
	OutcomeFailed   = "failed"
	OutcomeTimeout  = "timeout"
)

var (
	Connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "careline_connections",
			Help: "Number of attached transport connections",
		},
	)

	RegisteredUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "careline_registered_users",
			Help: "Number of users registered for calls",
		},
	)

	EventsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careline_events_received_total",
			Help: "Inbound events by name",
		},
		[]string{"event"},
	)

	FramesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careline_frames_sent_total",
			Help: "Outbound frames accepted by a connection send buffer",
		},
		[]string{"event"},
	)

	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careline_frames_dropped_total",
			Help: "Outbound frames dropped because of backpressure",
		},
		[]string{"event"},
	)

	Calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "careline_calls_total",
			Help: "Call attempt transitions by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		Connections,
		RegisteredUsers,
		EventsReceived,
		FramesSent,
		FramesDropped,
		Calls,
	)
}
