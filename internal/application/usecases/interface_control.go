package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// InterfaceControlUseCase restarts, enables and disables public interfaces.
// Each action has an immediate link half and a gated service-level half.
type InterfaceControlUseCase struct {
	host       *HostContext
	registry   interfaces.InterfaceRegistry
	classifier *services.InterfaceClassifier
	executor   interfaces.CommandExecutor
	services   interfaces.ServiceController
	history    historyRecorder
	logger     *logrus.Logger
}

// NewInterfaceControlUseCase creates a new InterfaceControlUseCase
func NewInterfaceControlUseCase(
	host *HostContext,
	registry interfaces.InterfaceRegistry,
	classifier *services.InterfaceClassifier,
	executor interfaces.CommandExecutor,
	serviceController interfaces.ServiceController,
	history interfaces.HistoryRepository,
	logger *logrus.Logger,
) *InterfaceControlUseCase {
	return &InterfaceControlUseCase{
		host:       host,
		registry:   registry,
		classifier: classifier,
		executor:   executor,
		services:   serviceController,
		history:    newHistoryRecorder(history, logger),
		logger:     logger,
	}
}

// Restart takes the link down and up, then re-applies the backend configuration
func (uc *InterfaceControlUseCase) Restart(ctx context.Context, name string) (*entities.ControlResult, error) {
	return uc.run(ctx, name, OperationRestart)
}

// Enable brings the link up and activates the backend configuration
func (uc *InterfaceControlUseCase) Enable(ctx context.Context, name string) (*entities.ControlResult, error) {
	return uc.run(ctx, name, OperationEnable)
}

// Disable takes the link down and deactivates it at the backend
func (uc *InterfaceControlUseCase) Disable(ctx context.Context, name string) (*entities.ControlResult, error) {
	return uc.run(ctx, name, OperationDisable)
}

func (uc *InterfaceControlUseCase) run(ctx context.Context, name, action string) (*entities.ControlResult, error) {
	start := time.Now()
	result := &entities.ControlResult{
		OperationID: uuid.NewString(),
		Interface:   name,
		Action:      action,
		Backend:     entities.BackendNone,
		Actions:     []string{},
	}

	err := uc.execute(ctx, name, action, result)
	metrics.RecordInterfaceAction(action, err == nil)

	final := entities.StateDone
	if err != nil {
		final = entities.StateFailed
		metrics.RecordError(string(errors.TypeOf(err)))
	}
	uc.history.record(ctx, entities.HistoryRecord{
		OperationID:   result.OperationID,
		Interface:     name,
		Operation:     action,
		Backend:       result.Backend,
		FinalState:    final,
		FurthestState: final,
		StartedAt:     start,
		Duration:      time.Since(start),
	}, err)

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *InterfaceControlUseCase) execute(ctx context.Context, name, action string, result *entities.ControlResult) error {
	if !uc.classifier.IsPublic(name) {
		return errors.NewNotPublicError(name)
	}

	unlock := uc.host.Lock(name)
	defer unlock()

	if _, err := uc.registry.Get(ctx, name); err != nil {
		return err
	}

	logger := uc.logger.WithFields(logrus.Fields{
		"operation_id": result.OperationID,
		"interface":    name,
		"action":       action,
	})

	ctx = context.WithoutCancel(ctx)

	if err := uc.linkAction(ctx, name, action, result); err != nil {
		return err
	}

	detection, err := uc.host.Detection(ctx)
	if err != nil {
		logger.WithError(err).Warn("Backend unknown, service-level action skipped")
		result.ServiceSkipped = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("service-level %s skipped: %v", action, err))
		return nil
	}
	result.Backend = detection.Backend

	capability := entities.CapabilityServiceEnable
	if action == OperationRestart {
		capability = entities.CapabilityServiceRestart
	}
	if detection.Backend == entities.BackendNone || !uc.host.ServiceGate(capability) {
		result.ServiceSkipped = true
		logger.WithField("backend", detection.Backend).Info("Service-level action skipped")
		return nil
	}

	var actions []string
	switch action {
	case OperationRestart:
		actions, err = uc.services.Restart(ctx, detection.Backend, name)
	case OperationEnable:
		actions, err = uc.services.Enable(ctx, detection.Backend, name)
	case OperationDisable:
		actions, err = uc.services.Disable(ctx, detection.Backend, name)
	}
	result.Actions = append(result.Actions, actions...)
	if err != nil {
		// the link action already took effect
		logger.WithError(err).WithField("backend", detection.Backend).Warn("Service-level action failed, link action result stands")
		result.Warnings = append(result.Warnings, fmt.Sprintf("service-level %s failed: %v", action, err))
	}

	logger.WithField("backend", detection.Backend).Info("Interface action completed")
	return nil
}

// linkAction runs the immediate ip link half of an action
func (uc *InterfaceControlUseCase) linkAction(ctx context.Context, name, action string, result *entities.ControlResult) error {
	var states []string
	switch action {
	case OperationRestart:
		states = []string{"down", "up"}
	case OperationEnable:
		states = []string{"up"}
	case OperationDisable:
		states = []string{"down"}
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown action %q", action), nil)
	}

	for _, state := range states {
		if _, err := uc.executor.Execute(ctx, "ip", "link", "set", "dev", name, state); err != nil {
			return err
		}
		result.Actions = append(result.Actions, fmt.Sprintf("ip link set dev %s %s", name, state))
	}
	return nil
}
