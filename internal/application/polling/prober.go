package polling

import (
	"context"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// HealthSink receives probe outcomes
type HealthSink interface {
	UpdateBackend(result entities.DetectionResult, err error)
	UpdateDBHealth(healthy bool, err error)
}

// HealthProber refreshes the health view of the backend and the history database
type HealthProber struct {
	detector interfaces.BackendDetector
	history  interfaces.HistoryRepository
	sink     HealthSink
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewHealthProber creates a new HealthProber. history may be nil when the database is disabled.
func NewHealthProber(
	detector interfaces.BackendDetector,
	history interfaces.HistoryRepository,
	sink HealthSink,
	timeout time.Duration,
	logger *logrus.Logger,
) *HealthProber {
	return &HealthProber{
		detector: detector,
		history:  history,
		sink:     sink,
		timeout:  timeout,
		logger:   logger,
	}
}

// Probe runs one round. The returned error is the first failure seen.
func (p *HealthProber) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, detectErr := p.detector.Detect(ctx)
	p.sink.UpdateBackend(result, detectErr)

	if p.history == nil {
		return detectErr
	}

	pingErr := p.history.Ping(ctx)
	p.sink.UpdateDBHealth(pingErr == nil, pingErr)
	if pingErr != nil {
		p.logger.WithError(pingErr).Debug("History database ping failed")
	}

	if detectErr != nil {
		return detectErr
	}
	return pingErr
}
