package usecases

import (
	"context"
	"sync"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// HostContext is the per-process view of the host shared by every use case:
// the cached backend detector, the container classification and the interface lock table.
type HostContext struct {
	detector  interfaces.BackendDetector
	container entities.ContainerEnvironment
	logger    *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHostContext creates a new HostContext
func NewHostContext(detector interfaces.BackendDetector, container entities.ContainerEnvironment, logger *logrus.Logger) *HostContext {
	if container.Disabled == nil {
		container = entities.NewContainerEnvironment(container.IsContainer, container.ServiceManager, container.Markers)
	}
	return &HostContext{
		detector:  detector,
		container: container,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Detection returns the cached backend detection
func (h *HostContext) Detection(ctx context.Context) (entities.DetectionResult, error) {
	return h.detector.Detect(ctx)
}

// Redetect drops the cached detection and detects again
func (h *HostContext) Redetect(ctx context.Context) (entities.DetectionResult, error) {
	h.detector.Invalidate()
	return h.detector.Detect(ctx)
}

// Container returns the container classification computed at startup
func (h *HostContext) Container() entities.ContainerEnvironment {
	return h.container
}

// ServiceGate is the single check deciding whether a service-level action may run
func (h *HostContext) ServiceGate(capability entities.Capability) bool {
	allowed := h.container.Allows(capability)
	if !allowed {
		h.logger.WithField("capability", capability).Debug("Service-level action disabled in this environment")
	}
	return allowed
}

// Lock serializes operations on one interface and returns the unlock function
func (h *HostContext) Lock(name string) func() {
	h.mu.Lock()
	l, ok := h.locks[name]
	if !ok {
		l = &sync.Mutex{}
		h.locks[name] = l
	}
	h.mu.Unlock()

	l.Lock()
	return l.Unlock
}
