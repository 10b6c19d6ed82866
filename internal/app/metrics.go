package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outbound results.
const (
	outboundSent         = "sent"
	outboundError        = "error"
	outboundDebugging    = "suppressed_debugging"
	outboundJumpEcho     = "skipped_jump"
	outboundNoConnection = "no_connection"
	outboundNoHistory    = "no_history"
)

// Inbound rejection reasons.
const (
	rejectMalformed    = "malformed"
	rejectNotSyncState = "not_sync_state"
	rejectPrecondition = "precondition"
	rejectUnsupported  = "unsupported"
)

// Navigation origins.
const (
	navApp      = "app"
	navTool     = "tool"
	navToolEcho = "tool_echo"
	navSkipped  = "skipped"
)

var (
	// outboundTotal tracks every global state change seen by the outbound sync
	outboundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devsync_outbound_changes_total",
			Help: "Global state changes seen by the outbound sync, by result",
		},
		[]string{"result"},
	)

	// inboundCommands tracks decoded tool commands by payload type
	inboundCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devsync_inbound_commands_total",
			Help: "Commands received from the debugging tool by payload type",
		},
		[]string{"type"},
	)

	// inboundRejected tracks commands ignored by the interpreter
	inboundRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devsync_inbound_rejected_total",
			Help: "Commands ignored by the interpreter by reason",
		},
		[]string{"reason"},
	)

	// replayOverlaps tracks replays started while another was in flight
	replayOverlaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devsync_replay_overlaps_total",
			Help: "Replays started before the previous replay completed",
		},
	)

	// navigations tracks route changes by origin
	navigations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devsync_navigations_total",
			Help: "Route changes handled by the navigation correlator by origin",
		},
		[]string{"origin"},
	)

	// toolConnected is 1 while a tool connection is open
	toolConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devsync_tool_connected",
			Help: "Whether a debugging tool connection is open",
		},
	)

	// reconnects tracks session resets
	reconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devsync_tool_reconnects_total",
			Help: "Tool reconnects performed to reset the tool session",
		},
	)
)

func recordOutbound(result string) {
	outboundTotal.WithLabelValues(result).Inc()
}

func recordCommand(payloadType string) {
	inboundCommands.WithLabelValues(payloadType).Inc()
}

func recordRejected(reason string) {
	inboundRejected.WithLabelValues(reason).Inc()
}

func recordNavigation(origin string) {
	navigations.WithLabelValues(origin).Inc()
}
