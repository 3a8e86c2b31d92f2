package polling

import (
	"context"
	"math"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// Strategy decides how long to wait before the next probe
type Strategy interface {
	// NextInterval returns the wait after a probe with the given outcome
	NextInterval(success bool) time.Duration
	Reset()
}

// ExponentialBackoffStrategy waits longer after each consecutive failure
type ExponentialBackoffStrategy struct {
	baseInterval   time.Duration
	maxInterval    time.Duration
	multiplier     float64
	currentBackoff int
	logger         *logrus.Logger
}

// NewExponentialBackoffStrategy creates a new strategy. multiplier <= 1 means 2.
func NewExponentialBackoffStrategy(
	baseInterval time.Duration,
	maxInterval time.Duration,
	multiplier float64,
	logger *logrus.Logger,
) *ExponentialBackoffStrategy {
	if multiplier <= 1 {
		multiplier = 2.0
	}

	return &ExponentialBackoffStrategy{
		baseInterval: baseInterval,
		maxInterval:  maxInterval,
		multiplier:   multiplier,
		logger:       logger,
	}
}

// NextInterval returns the base interval after a success and a capped exponential wait after failures
func (s *ExponentialBackoffStrategy) NextInterval(success bool) time.Duration {
	if success {
		if s.currentBackoff > 0 {
			s.logger.Debug("Resetting probe backoff after success")
			s.currentBackoff = 0
			metrics.SetProbeBackoffLevel(0)
		}
		return s.baseInterval
	}

	s.currentBackoff++
	metrics.SetProbeBackoffLevel(float64(s.currentBackoff))

	backoff := float64(s.baseInterval) * math.Pow(s.multiplier, float64(s.currentBackoff-1))
	next := time.Duration(backoff)
	if next > s.maxInterval || next <= 0 {
		next = s.maxInterval
	}

	s.logger.WithFields(logrus.Fields{
		"backoff_count": s.currentBackoff,
		"next_interval": next,
		"max_interval":  s.maxInterval,
	}).Debug("Probe backoff calculated")

	return next
}

// Reset clears the failure count
func (s *ExponentialBackoffStrategy) Reset() {
	s.currentBackoff = 0
	metrics.SetProbeBackoffLevel(0)
}

// PollingController runs a task repeatedly, spacing runs with a Strategy
type PollingController struct {
	strategy Strategy
	logger   *logrus.Logger
}

// NewPollingController creates a new PollingController
func NewPollingController(strategy Strategy, logger *logrus.Logger) *PollingController {
	return &PollingController{
		strategy: strategy,
		logger:   logger,
	}
}

// Start runs task once immediately and then on every interval until ctx is done.
// A run that ends with ctx already cancelled is not reported to the strategy.
func (c *PollingController) Start(ctx context.Context, task func(context.Context) error) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-timer.C:
			err := task(ctx)
			if err != nil {
				c.logger.WithError(err).Warn("Health probe failed")
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			timer.Reset(c.strategy.NextInterval(err == nil))
		}
	}
}
