package interfaces

import (
	"context"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
)

// HistoryRepository stores an audit trail of configuration operations
type HistoryRepository interface {
	Record(ctx context.Context, record entities.HistoryRecord) error

	// ListByInterface returns the most recent records first
	ListByInterface(ctx context.Context, name string, limit int) ([]entities.HistoryRecord, error)

	Ping(ctx context.Context) error
}
