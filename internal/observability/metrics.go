package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PunchesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "punches_processed_total",
		Help:      "Total number of punch events reconciled into attendance sessions",
	}, []string{"device_sn"})

	PunchesUnmatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "punches_unmatched_total",
		Help:      "Total number of punches whose PIN resolved to no subject",
	}, []string{"device_sn"})

	CheckEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "check_events_total",
		Help:      "Total check-in/check-out transitions",
	}, []string{"direction"})

	CommandsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "commands_enqueued_total",
		Help:      "Total device commands enqueued",
	})

	CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "commands_dispatched_total",
		Help:      "Total device commands handed to a polling terminal",
	}, []string{"device_sn"})

	CommandResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "command_results_total",
		Help:      "Total command result callbacks by outcome",
	}, []string{"outcome"})

	PendingCommands = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gatehouse",
		Name:      "pending_commands",
		Help:      "Commands awaiting dispatch per device, refreshed on poll",
	}, []string{"device_sn"})

	DeviceHeartbeats = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatehouse",
		Name:      "device_heartbeats_total",
		Help:      "Total heartbeats received per device",
	}, []string{"device_sn"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gatehouse",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	DevicesOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatehouse",
		Name:      "devices_online",
		Help:      "Devices within the heartbeat threshold, refreshed on status poll",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatehouse",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
