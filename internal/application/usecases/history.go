package usecases

import (
	"context"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	historyWriteTimeout = 3 * time.Second
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Operation names recorded in the history
const (
	OperationConfigure = "configure"
	OperationRestart   = "restart"
	OperationEnable    = "enable"
	OperationDisable   = "disable"
	OperationCleanup   = "cleanup"
)

// historyRecorder writes audit rows without failing the audited operation
type historyRecorder struct {
	repository interfaces.HistoryRepository
	logger     *logrus.Logger
}

func newHistoryRecorder(repo interfaces.HistoryRepository, logger *logrus.Logger) historyRecorder {
	return historyRecorder{repository: repo, logger: logger}
}

// record stores the outcome of op. The write survives caller cancellation.
func (r historyRecorder) record(ctx context.Context, rec entities.HistoryRecord, opErr error) {
	if r.repository == nil {
		return
	}
	if opErr != nil {
		rec.ErrorType = string(errors.TypeOf(opErr))
		rec.ErrorMessage = opErr.Error()
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := r.repository.Record(writeCtx, rec); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"operation_id": rec.OperationID,
			"interface":    rec.Interface,
		}).Warn("Failed to record operation history")
	}
}

// HistoryUseCase reads the configuration audit trail
type HistoryUseCase struct {
	repository interfaces.HistoryRepository
}

// NewHistoryUseCase creates a new HistoryUseCase
func NewHistoryUseCase(repo interfaces.HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{repository: repo}
}

// List returns the newest records for an interface. limit is clamped to 1..200, 0 means 20.
func (uc *HistoryUseCase) List(ctx context.Context, name string, limit int) ([]entities.HistoryRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return uc.repository.ListByInterface(ctx, name, limit)
}
