package network

import (
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"
	"github.com/esnrhm/LinuxNetAPI/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const detectKey = "detect"

// probeTimeout bounds each read-only daemon probe
const probeTimeout = 5 * time.Second

// CachedBackendDetector decides the authoritative backend once and caches it until Invalidate.
// Concurrent first calls share one detection.
type CachedBackendDetector struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	envDetector     interfaces.EnvironmentDetector
	netlinker       Netlinker
	paths           Paths
	retryDelay      time.Duration
	logger          *logrus.Logger
	lookPath        func(string) (string, error)

	flight singleflight.Group

	mu         sync.RWMutex
	cached     *entities.DetectionResult
	generation uint64

	envOnce   sync.Once
	container entities.ContainerEnvironment
}

// NewCachedBackendDetector creates a new CachedBackendDetector
func NewCachedBackendDetector(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	envDetector interfaces.EnvironmentDetector,
	nl Netlinker,
	paths Paths,
	retryDelay time.Duration,
	logger *logrus.Logger,
) *CachedBackendDetector {
	return &CachedBackendDetector{
		commandExecutor: executor,
		fileSystem:      fs,
		envDetector:     envDetector,
		netlinker:       nl,
		paths:           paths,
		retryDelay:      retryDelay,
		logger:          logger,
		lookPath:        exec.LookPath,
	}
}

// Detect returns the cached result, detecting on first use
func (d *CachedBackendDetector) Detect(ctx context.Context) (entities.DetectionResult, error) {
	d.mu.RLock()
	if d.cached != nil {
		result := *d.cached
		d.mu.RUnlock()
		return result, nil
	}
	generation := d.generation
	d.mu.RUnlock()

	v, err, _ := d.flight.Do(detectKey, func() (interface{}, error) {
		result, err := d.detect(ctx)
		if err != nil {
			return nil, err
		}

		d.mu.Lock()
		// an Invalidate during detection discards this result
		if d.generation == generation {
			d.cached = &result
		}
		d.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return entities.DetectionResult{}, err
	}
	return v.(entities.DetectionResult), nil
}

// Invalidate drops the cached result so the next Detect probes again
func (d *CachedBackendDetector) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.generation++
	d.mu.Unlock()
	d.flight.Forget(detectKey)

	d.logger.Info("Backend detection cache invalidated")
}

// Container returns the container classification, computed once
func (d *CachedBackendDetector) Container() entities.ContainerEnvironment {
	d.envOnce.Do(func() {
		d.container = d.envDetector.DetectEnvironment()
	})
	return d.container
}

func (d *CachedBackendDetector) detect(ctx context.Context) (entities.DetectionResult, error) {
	result := entities.DetectionResult{
		Backend:   d.detectBackend(ctx),
		Container: d.Container(),
	}

	_, linkErr := d.netlinker.LinkList()
	result.LiveApply = linkErr == nil

	logger := d.logger.WithFields(logrus.Fields{
		"backend":     result.Backend,
		"environment": result.Container.Label(),
		"live_apply":  result.LiveApply,
	})

	if result.Backend == entities.BackendNone && !result.LiveApply {
		logger.WithError(linkErr).Error("No configuration backend and no live apply path")
		return result, errors.NewBackendUnavailableError("no configuration backend and netlink is unavailable", linkErr)
	}

	metrics.RecordDetection(string(result.Backend))
	logger.Info("Configuration backend detected")
	return result, nil
}

// detectBackend applies the priority netplan > interfaces file > NetworkManager > none
func (d *CachedBackendDetector) detectBackend(ctx context.Context) entities.BackendKind {
	if _, err := d.lookPath("netplan"); err == nil && d.fileSystem.Exists(d.paths.NetplanDir) {
		return entities.BackendNetplan
	}
	if d.fileSystem.Exists(d.paths.InterfacesFile) {
		return entities.BackendInterfaces
	}
	if d.networkManagerActive(ctx) {
		return entities.BackendNetworkManager
	}
	return entities.BackendNone
}

// networkManagerActive probes the daemon, retrying once on failure
func (d *CachedBackendDetector) networkManagerActive(ctx context.Context) bool {
	active := false
	err := utils.RetryWithBackoff(ctx, utils.ProbeRetryConfig(d.retryDelay), func() error {
		out, err := d.commandExecutor.ExecuteWithTimeout(ctx, probeTimeout, "systemctl", "is-active", "NetworkManager")
		if err == nil && strings.TrimSpace(string(out)) == "active" {
			active = true
			return nil
		}

		out, err = d.commandExecutor.ExecuteWithTimeout(ctx, probeTimeout, "nmcli", "-t", "-f", "RUNNING", "general")
		if err != nil {
			if stderrors.Is(err, exec.ErrNotFound) {
				return nil
			}
			return err
		}
		active = strings.TrimSpace(string(out)) == "running"
		return nil
	})
	if err != nil {
		d.logger.WithError(err).Debug("NetworkManager probe failed")
	}
	return active
}
