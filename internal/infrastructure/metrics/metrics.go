package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Configuration requests
	ConfigureRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linuxnet_configure_requests_total",
			Help: "Total number of interface configuration requests",
		},
		[]string{"backend", "final_state"},
	)

	ConfigureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linuxnet_configure_duration_seconds",
			Help:    "Time spent configuring one interface",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// Interface actions
	InterfaceActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linuxnet_interface_actions_total",
			Help: "Total number of restart, enable and disable actions",
		},
		[]string{"action", "status"},
	)

	// External commands
	CommandsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linuxnet_commands_total",
			Help: "Total number of external commands executed",
		},
		[]string{"command", "status"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linuxnet_command_duration_seconds",
			Help:    "Time spent executing external commands",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Backend detection
	BackendDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linuxnet_backend_detections_total",
			Help: "Total number of uncached backend detections",
		},
		[]string{"backend"},
	)

	ArtifactsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linuxnet_artifacts_removed_total",
			Help: "Total number of generated artifacts removed by cleanup",
		},
	)

	// Database connection
	DBConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linuxnet_db_connection_status",
			Help: "Database connection status (1 = connected, 0 = disconnected)",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linuxnet_db_query_duration_seconds",
			Help:    "Time spent executing database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linuxnet_errors_total",
			Help: "Total number of errors returned to callers",
		},
		[]string{"error_type"},
	)

	ProbeBackoffLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linuxnet_health_probe_backoff_level",
			Help: "Consecutive failed health probes (0 = healthy)",
		},
	)

	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linuxnet_service_info",
			Help: "Service information",
		},
		[]string{"version", "backend", "environment"},
	)
)

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// RecordConfigure records the outcome of a configuration request
func RecordConfigure(backend, finalState string, duration float64) {
	ConfigureRequests.WithLabelValues(backend, finalState).Inc()
	ConfigureDuration.WithLabelValues(backend).Observe(duration)
}

// RecordInterfaceAction records a restart, enable or disable
func RecordInterfaceAction(action string, ok bool) {
	InterfaceActions.WithLabelValues(action, statusLabel(ok)).Inc()
}

// RecordCommand records one external command execution
func RecordCommand(command string, duration float64, ok bool) {
	CommandsExecuted.WithLabelValues(command, statusLabel(ok)).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration)
}

// RecordDetection records an uncached backend detection
func RecordDetection(backend string) {
	BackendDetections.WithLabelValues(backend).Inc()
}

// RecordArtifactsRemoved adds to the cleanup counter
func RecordArtifactsRemoved(count int) {
	ArtifactsRemoved.Add(float64(count))
}

// RecordDBQuery records the duration of a database query
func RecordDBQuery(queryType string, duration float64) {
	DBQueryDuration.WithLabelValues(queryType).Observe(duration)
}

// RecordError records an error returned to a caller
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// SetDBConnectionStatus sets the database connection gauge
func SetDBConnectionStatus(connected bool) {
	if connected {
		DBConnectionStatus.Set(1)
	} else {
		DBConnectionStatus.Set(0)
	}
}

// SetProbeBackoffLevel sets the health probe backoff gauge
func SetProbeBackoffLevel(level float64) {
	ProbeBackoffLevel.Set(level)
}

// SetServiceInfo publishes static service information
func SetServiceInfo(version, backend, environment string) {
	ServiceInfo.Reset()
	ServiceInfo.WithLabelValues(version, backend, environment).Set(1)
}
