package persistence

import (
	"context"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
)

// NoopHistoryRepository discards history when no database is configured
type NoopHistoryRepository struct{}

// NewNoopHistoryRepository creates a new NoopHistoryRepository
func NewNoopHistoryRepository() *NoopHistoryRepository {
	return &NoopHistoryRepository{}
}

func (NoopHistoryRepository) Record(ctx context.Context, record entities.HistoryRecord) error {
	return nil
}

func (NoopHistoryRepository) ListByInterface(ctx context.Context, name string, limit int) ([]entities.HistoryRecord, error) {
	return []entities.HistoryRecord{}, nil
}

func (NoopHistoryRepository) Ping(ctx context.Context) error {
	return nil
}
