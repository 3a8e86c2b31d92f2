package usecases

import (
	"bytes"
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

// ConfigureObserver is notified of every configure outcome
type ConfigureObserver interface {
	RecordConfigure(success bool)
}

// ConfigureInterfaceUseCase applies a configuration live and persists it for reboot
type ConfigureInterfaceUseCase struct {
	host       *HostContext
	registry   interfaces.InterfaceRegistry
	classifier *services.InterfaceClassifier
	live       interfaces.LiveApplier
	stores     interfaces.ArtifactStoreProvider
	generator  interfaces.ArtifactGenerator
	validator  interfaces.ArtifactValidator
	backups    interfaces.BackupService
	history    historyRecorder
	observer   ConfigureObserver
	logger     *logrus.Logger
}

// NewConfigureInterfaceUseCase creates a new ConfigureInterfaceUseCase
func NewConfigureInterfaceUseCase(
	host *HostContext,
	registry interfaces.InterfaceRegistry,
	classifier *services.InterfaceClassifier,
	live interfaces.LiveApplier,
	stores interfaces.ArtifactStoreProvider,
	generator interfaces.ArtifactGenerator,
	validator interfaces.ArtifactValidator,
	backups interfaces.BackupService,
	history interfaces.HistoryRepository,
	logger *logrus.Logger,
) *ConfigureInterfaceUseCase {
	return &ConfigureInterfaceUseCase{
		host:       host,
		registry:   registry,
		classifier: classifier,
		live:       live,
		stores:     stores,
		generator:  generator,
		validator:  validator,
		backups:    backups,
		history:    newHistoryRecorder(history, logger),
		logger:     logger,
	}
}

// SetObserver attaches a configure outcome observer
func (uc *ConfigureInterfaceUseCase) SetObserver(observer ConfigureObserver) {
	uc.observer = observer
}

// ConfigureInterfaceInput is the configuration request for one interface
type ConfigureInterfaceInput struct {
	Name   string
	Config entities.InterfaceConfig
}

// Execute runs Received -> Validated -> LiveApplied -> Persisted -> Done.
// The result is returned on failure too, with State failed and FurthestState set.
func (uc *ConfigureInterfaceUseCase) Execute(ctx context.Context, input ConfigureInterfaceInput) (*entities.ConfigureResult, error) {
	start := time.Now()
	result := &entities.ConfigureResult{
		OperationID:   uuid.NewString(),
		Interface:     input.Name,
		Config:        input.Config.Normalize(),
		State:         entities.StateReceived,
		FurthestState: entities.StateReceived,
		Backend:       entities.BackendNone,
	}
	logger := uc.logger.WithFields(logrus.Fields{
		"operation_id": result.OperationID,
		"interface":    input.Name,
	})

	err := uc.execute(ctx, input, result, logger)
	result.Duration = time.Since(start)
	if err != nil {
		result.Fail()
		metrics.RecordError(string(errors.TypeOf(err)))
		logger.WithError(err).WithField("state", result.FurthestState).Error("Interface configuration failed")
	} else {
		logger.WithFields(logrus.Fields{
			"backend":  result.Backend,
			"duration": result.Duration,
		}).Info("Interface configured")
	}

	metrics.RecordConfigure(string(result.Backend), string(result.State), result.Duration.Seconds())
	if uc.observer != nil {
		uc.observer.RecordConfigure(err == nil)
	}
	uc.history.record(ctx, entities.HistoryRecord{
		OperationID:   result.OperationID,
		Interface:     result.Interface,
		Operation:     OperationConfigure,
		Backend:       result.Backend,
		RequestedMode: input.Config.Mode(),
		FinalState:    result.State,
		FurthestState: result.FurthestState,
		StartedAt:     start,
		Duration:      result.Duration,
	}, err)

	return result, err
}

func (uc *ConfigureInterfaceUseCase) execute(ctx context.Context, input ConfigureInterfaceInput, result *entities.ConfigureResult, logger *logrus.Entry) error {
	if !uc.classifier.IsPublic(input.Name) {
		return errors.NewNotPublicError(input.Name)
	}
	if err := input.Config.Validate(); err != nil {
		return errors.NewValidationError("invalid interface configuration", err)
	}
	cfg := result.Config
	result.Advance(entities.StateValidated)

	unlock := uc.host.Lock(input.Name)
	defer unlock()

	if _, err := uc.registry.Get(ctx, input.Name); err != nil {
		return err
	}

	// past this point the host is being changed; caller cancellation no longer applies
	applyCtx := context.WithoutCancel(ctx)

	warnings, err := uc.live.Apply(applyCtx, input.Name, cfg)
	if err != nil {
		return err
	}
	result.Warnings = append(result.Warnings, warnings...)
	result.Advance(entities.StateLiveApplied)
	logger.WithField("state", result.State).Debug("Live state applied")

	artifact, err := uc.persist(applyCtx, input.Name, cfg, result)
	if err != nil {
		return errors.NewPartialApplyError(
			fmt.Sprintf("%s was configured live but the configuration will not survive a reboot", input.Name), err)
	}
	result.Artifact = artifact
	result.Advance(entities.StatePersisted)
	result.Advance(entities.StateDone)
	return nil
}

// persist writes the artifact for the detected backend, reusing an existing generated artifact's location
func (uc *ConfigureInterfaceUseCase) persist(ctx context.Context, name string, cfg entities.InterfaceConfig, result *entities.ConfigureResult) (*entities.GeneratedConfigArtifact, error) {
	detection, err := uc.host.Detection(ctx)
	if err != nil {
		return nil, err
	}
	result.Backend = detection.Backend
	if detection.Backend == entities.BackendNone {
		return nil, errors.NewBackendUnavailableError("no persistent configuration backend on this host", nil)
	}

	store, err := uc.stores.StoreFor(detection.Backend)
	if err != nil {
		return nil, err
	}

	existing, err := store.Find(ctx, name)
	if err != nil {
		return nil, err
	}

	artifact, err := uc.generator.Generate(detection.Backend, name, cfg, existing)
	if err != nil {
		return nil, err
	}
	if _, err := uc.validator.ValidateContent(artifact.Content.Kind(), artifact.Rendered); err != nil {
		return nil, err
	}

	if existing == nil {
		if err := uc.checkUserFile(ctx, store, detection.Backend, artifact.Path); err != nil {
			return nil, err
		}
	}

	if existing != nil && bytes.Equal(existing.Rendered, artifact.Rendered) {
		uc.logger.WithField("interface", name).Debug("Persisted configuration unchanged, nothing written")
		return existing, nil
	}

	if err := uc.backups.CreateBackup(ctx, name, artifact.Path); err != nil {
		uc.logger.WithError(err).WithField("interface", name).Warn("Failed to back up previous configuration")
		result.Warnings = append(result.Warnings, fmt.Sprintf("previous configuration not backed up: %v", err))
	}

	if err := store.Write(ctx, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

// checkUserFile refuses a generated path that is already taken by a user-authored file.
// The interfaces backend shares one file with user stanzas and is exempt.
func (uc *ConfigureInterfaceUseCase) checkUserFile(ctx context.Context, store interfaces.ArtifactStore, backend entities.BackendKind, path string) error {
	if backend == entities.BackendInterfaces {
		return nil
	}

	artifacts, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		if a.Path == path && !a.SystemGenerated {
			return errors.NewPersistenceError(fmt.Sprintf("%s is user-authored, refusing to overwrite it", path), nil)
		}
	}
	return nil
}
