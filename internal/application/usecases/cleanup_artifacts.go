package usecases

import (
	"context"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/services"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CleanupArtifactsUseCase removes the system-generated artifacts of one interface.
// User-authored artifacts are never touched.
type CleanupArtifactsUseCase struct {
	host       *HostContext
	classifier *services.InterfaceClassifier
	stores     interfaces.ArtifactStoreProvider
	backups    interfaces.BackupService
	history    historyRecorder
	logger     *logrus.Logger
}

// NewCleanupArtifactsUseCase creates a new CleanupArtifactsUseCase
func NewCleanupArtifactsUseCase(
	host *HostContext,
	classifier *services.InterfaceClassifier,
	stores interfaces.ArtifactStoreProvider,
	backups interfaces.BackupService,
	history interfaces.HistoryRepository,
	logger *logrus.Logger,
) *CleanupArtifactsUseCase {
	return &CleanupArtifactsUseCase{
		host:       host,
		classifier: classifier,
		stores:     stores,
		backups:    backups,
		history:    newHistoryRecorder(history, logger),
		logger:     logger,
	}
}

// Execute removes every generated artifact defining name on the active backend.
// Interfaces that no longer exist can be cleaned up, so only the name syntax is checked.
func (uc *CleanupArtifactsUseCase) Execute(ctx context.Context, name string) (*entities.CleanupResult, error) {
	start := time.Now()
	result := &entities.CleanupResult{
		OperationID: uuid.NewString(),
		Interface:   name,
	}

	backend, err := uc.execute(ctx, name, result)
	metrics.RecordArtifactsRemoved(result.RemovedCount)

	final := entities.StateDone
	if err != nil {
		final = entities.StateFailed
		metrics.RecordError(string(errors.TypeOf(err)))
	}
	uc.history.record(ctx, entities.HistoryRecord{
		OperationID:   result.OperationID,
		Interface:     name,
		Operation:     OperationCleanup,
		Backend:       backend,
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

func (uc *CleanupArtifactsUseCase) execute(ctx context.Context, name string, result *entities.CleanupResult) (entities.BackendKind, error) {
	if err := uc.classifier.ValidateName(name); err != nil {
		return entities.BackendNone, errors.NewValidationError("invalid interface name", err)
	}

	unlock := uc.host.Lock(name)
	defer unlock()

	detection, err := uc.host.Detection(ctx)
	if err != nil {
		return entities.BackendNone, err
	}
	if detection.Backend == entities.BackendNone {
		return detection.Backend, nil
	}

	store, err := uc.stores.StoreFor(detection.Backend)
	if err != nil {
		return detection.Backend, err
	}
	artifacts, err := store.List(ctx)
	if err != nil {
		return detection.Backend, err
	}

	logger := uc.logger.WithFields(logrus.Fields{
		"operation_id": result.OperationID,
		"interface":    name,
		"backend":      detection.Backend,
	})

	ctx = context.WithoutCancel(ctx)
	backedUp := map[string]bool{}
	for _, artifact := range artifacts {
		if !artifact.SystemGenerated || !artifact.Defines(name) {
			continue
		}

		if !backedUp[artifact.Path] {
			if err := uc.backups.CreateBackup(ctx, name, artifact.Path); err != nil {
				logger.WithError(err).WithField("config_path", artifact.Path).Warn("Failed to back up artifact before removal")
			}
			backedUp[artifact.Path] = true
		}

		if err := store.Remove(ctx, artifact); err != nil {
			return detection.Backend, err
		}
		result.RemovedCount++
		result.Removed = append(result.Removed, artifact.Path)
	}

	logger.WithField("removed_count", result.RemovedCount).Info("Generated artifacts cleaned up")
	return detection.Backend, nil
}
