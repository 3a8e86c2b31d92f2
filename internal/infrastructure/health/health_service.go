package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// degradedFailureRatio is the configure failure share at which the service reports degraded
const degradedFailureRatio = 0.5

// HealthStatus is the overall verdict of the health report
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// BackendComponent reports the detected persistence backend
type BackendComponent struct {
	Type      entities.BackendKind `json:"type"`
	LiveApply bool                 `json:"live_apply"`
	Error     string               `json:"error,omitempty"`
	CheckedAt string               `json:"checked_at,omitempty"`
}

// ContainerComponent reports the container classification seen by detection
type ContainerComponent struct {
	Environment          string                `json:"environment"`
	ServiceManager       bool                  `json:"service_manager"`
	DisabledCapabilities []entities.Capability `json:"disabled_capabilities"`
}

// DatabaseComponent reports the history database, present only when it is enabled
type DatabaseComponent struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Statistics counts configure outcomes since start
type Statistics struct {
	Configured    int64  `json:"configured"`
	FailedConfigs int64  `json:"failed_configs"`
	Uptime        string `json:"uptime"`
}

// HealthResponse is the body served on the health port
type HealthResponse struct {
	Status     HealthStatus       `json:"status"`
	Timestamp  string             `json:"timestamp"`
	Backend    BackendComponent   `json:"backend"`
	Container  ContainerComponent `json:"container"`
	Database   *DatabaseComponent `json:"database,omitempty"`
	Statistics Statistics         `json:"statistics"`
}

// HealthService aggregates probe results and configure outcomes into one report
type HealthService struct {
	clock     interfaces.Clock
	logger    *logrus.Logger
	startTime time.Time
	dbEnabled bool

	mu            sync.RWMutex
	detection     entities.DetectionResult
	detectErr     error
	detectedAt    time.Time
	dbHealthy     bool
	dbErr         error
	configured    int64
	failedConfigs int64
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, logger *logrus.Logger, dbEnabled bool) *HealthService {
	return &HealthService{
		clock:     clock,
		logger:    logger,
		startTime: clock.Now(),
		dbEnabled: dbEnabled,
		detection: entities.DetectionResult{Backend: entities.BackendNone},
	}
}

// UpdateBackend records the latest detection outcome
func (h *HealthService) UpdateBackend(result entities.DetectionResult, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil && h.detectErr == nil {
		h.logger.WithError(err).Warn("Backend detection became unavailable")
	}
	h.detection = result
	h.detectErr = err
	h.detectedAt = h.clock.Now()
}

// UpdateDBHealth records the latest history database ping
func (h *HealthService) UpdateDBHealth(healthy bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dbHealthy = healthy
	h.dbErr = err
}

// RecordConfigure counts a configure outcome
func (h *HealthService) RecordConfigure(success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if success {
		h.configured++
		return
	}
	h.failedConfigs++
}

// Handler serves the health report on / and prometheus metrics on /metrics
func (h *HealthService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", h)
	return mux
}

// ServeHTTP writes the report; unhealthy answers 503
func (h *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.Report()
	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.WithError(err).Error("Failed to encode health report")
	}
}

// Report builds the current health report
func (h *HealthService) Report() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now()
	report := HealthResponse{
		Status:    h.status(),
		Timestamp: now.Format(time.RFC3339),
		Backend: BackendComponent{
			Type:      h.detection.Backend,
			LiveApply: h.detection.LiveApply,
			Error:     errorString(h.detectErr),
		},
		Container: ContainerComponent{
			Environment:          h.detection.Container.Label(),
			ServiceManager:       h.detection.Container.ServiceManager,
			DisabledCapabilities: h.detection.Container.DisabledCapabilities(),
		},
		Statistics: Statistics{
			Configured:    h.configured,
			FailedConfigs: h.failedConfigs,
			Uptime:        formatUptime(now.Sub(h.startTime)),
		},
	}
	if !h.detectedAt.IsZero() {
		report.Backend.CheckedAt = h.detectedAt.Format(time.RFC3339)
	}
	if h.dbEnabled {
		report.Database = &DatabaseComponent{Healthy: h.dbHealthy, Error: errorString(h.dbErr)}
	}
	return report
}

// status: failed detection is unhealthy; a lost history database or a high
// configure failure share is degraded
func (h *HealthService) status() HealthStatus {
	if h.detectErr != nil {
		return StatusUnhealthy
	}
	if h.dbEnabled && !h.dbHealthy {
		return StatusDegraded
	}
	total := h.configured + h.failedConfigs
	if total > 0 && float64(h.failedConfigs)/float64(total) >= degradedFailureRatio {
		return StatusDegraded
	}
	return StatusHealthy
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatUptime renders e.g. 1d2h3m, 2h3m or 3m
func formatUptime(d time.Duration) string {
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours()) % 24
	days := int(d.Hours()) / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh%dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
