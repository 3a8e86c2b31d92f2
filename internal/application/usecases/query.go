package usecases

import (
	"context"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"

	"github.com/sirupsen/logrus"
)

// BackendInfo describes the detected persistence backend
type BackendInfo struct {
	Backend     entities.BackendKind `json:"config_type"`
	Description string               `json:"description"`
	LiveApply   bool                 `json:"live_apply"`
	Environment string               `json:"environment"`
}

// ContainerStatus describes the container classification and the tools on PATH
type ContainerStatus struct {
	IsContainer          bool                  `json:"is_container"`
	Overridden           bool                  `json:"overridden"`
	Environment          string                `json:"environment"`
	Markers              []string              `json:"markers"`
	ServiceManager       bool                  `json:"service_manager"`
	DisabledCapabilities []entities.Capability `json:"disabled_capabilities"`
	AvailableTools       map[string]bool       `json:"available_tools"`
}

// QueryUseCase answers read-only questions about interfaces and the backend
type QueryUseCase struct {
	host       *HostContext
	registry   interfaces.InterfaceRegistry
	classifier *services.InterfaceClassifier
	env        interfaces.EnvironmentDetector
	logger     *logrus.Logger
}

// NewQueryUseCase creates a new QueryUseCase
func NewQueryUseCase(
	host *HostContext,
	registry interfaces.InterfaceRegistry,
	classifier *services.InterfaceClassifier,
	env interfaces.EnvironmentDetector,
	logger *logrus.Logger,
) *QueryUseCase {
	return &QueryUseCase{
		host:       host,
		registry:   registry,
		classifier: classifier,
		env:        env,
		logger:     logger,
	}
}

// ListPublic returns the public interfaces
func (uc *QueryUseCase) ListPublic(ctx context.Context) ([]entities.NetworkInterface, error) {
	return uc.registry.ListPublic(ctx)
}

// ListAll returns every interface, virtual ones included
func (uc *QueryUseCase) ListAll(ctx context.Context) ([]entities.NetworkInterface, error) {
	return uc.registry.ListAll(ctx)
}

// Get returns a single interface of any kind
func (uc *QueryUseCase) Get(ctx context.Context, name string) (*entities.NetworkInterface, error) {
	if err := uc.classifier.ValidateName(name); err != nil {
		return nil, errors.NewValidationError("invalid interface name", err)
	}
	return uc.registry.Get(ctx, name)
}

// BackendKind returns the cached backend detection
func (uc *QueryUseCase) BackendKind(ctx context.Context) (*BackendInfo, error) {
	detection, err := uc.host.Detection(ctx)
	if err != nil {
		return nil, err
	}
	return backendInfo(detection), nil
}

// Redetect drops the cached detection and runs it again
func (uc *QueryUseCase) Redetect(ctx context.Context) (*BackendInfo, error) {
	detection, err := uc.host.Redetect(ctx)
	if err != nil {
		return nil, err
	}
	uc.logger.WithField("backend", detection.Backend).Info("Backend re-detected")
	return backendInfo(detection), nil
}

// ContainerStatus reports the container classification computed at startup
func (uc *QueryUseCase) ContainerStatus(ctx context.Context) *ContainerStatus {
	env := uc.host.Container()
	markers := env.Markers
	if markers == nil {
		markers = []string{}
	}
	return &ContainerStatus{
		IsContainer:          env.IsContainer,
		Overridden:           env.Overridden,
		Environment:          env.Label(),
		Markers:              markers,
		ServiceManager:       env.ServiceManager,
		DisabledCapabilities: env.DisabledCapabilities(),
		AvailableTools:       uc.env.AvailableTools(),
	}
}

func backendInfo(detection entities.DetectionResult) *BackendInfo {
	return &BackendInfo{
		Backend:     detection.Backend,
		Description: detection.Backend.Description(),
		LiveApply:   detection.LiveApply,
		Environment: detection.Container.Label(),
	}
}
