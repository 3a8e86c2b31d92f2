package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/entities"
	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"
	"github.com/esnrhm/LinuxNetAPI/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

const createHistoryTable = `
	CREATE TABLE IF NOT EXISTS configuration_history (
		id             BIGINT AUTO_INCREMENT PRIMARY KEY,
		operation_id   CHAR(36)     NOT NULL,
		interface_name VARCHAR(32)  NOT NULL,
		operation      VARCHAR(32)  NOT NULL,
		backend        VARCHAR(32)  NOT NULL,
		requested_mode VARCHAR(16)  NOT NULL DEFAULT '',
		final_state    VARCHAR(32)  NOT NULL,
		furthest_state VARCHAR(32)  NOT NULL,
		error_type     VARCHAR(32)  NOT NULL DEFAULT '',
		error_message  TEXT,
		started_at     DATETIME(3)  NOT NULL,
		duration_ms    BIGINT       NOT NULL,
		INDEX idx_history_interface (interface_name, started_at)
	)
`

// MySQLHistoryRepository is the MySQL backed HistoryRepository
type MySQLHistoryRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLHistoryRepository creates a new MySQLHistoryRepository
func NewMySQLHistoryRepository(db *sql.DB, logger *logrus.Logger) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the history table when missing
func (r *MySQLHistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createHistoryTable); err != nil {
		return errors.NewPersistenceError("failed to create history table", err)
	}
	return nil
}

// Record inserts one history row
func (r *MySQLHistoryRepository) Record(ctx context.Context, record entities.HistoryRecord) error {
	query := `
		INSERT INTO configuration_history
			(operation_id, interface_name, operation, backend, requested_mode,
			 final_state, furthest_state, error_type, error_message, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		record.OperationID,
		record.Interface,
		record.Operation,
		string(record.Backend),
		string(record.RequestedMode),
		string(record.FinalState),
		string(record.FurthestState),
		record.ErrorType,
		record.ErrorMessage,
		record.StartedAt.UTC(),
		record.Duration.Milliseconds(),
	)
	metrics.RecordDBQuery("insert_history", time.Since(start).Seconds())
	if err != nil {
		return errors.NewPersistenceError("failed to record history", err)
	}

	r.logger.WithFields(logrus.Fields{
		"operation_id": record.OperationID,
		"interface":    record.Interface,
		"operation":    record.Operation,
	}).Debug("History recorded")
	return nil
}

// ListByInterface returns the newest records of an interface
func (r *MySQLHistoryRepository) ListByInterface(ctx context.Context, name string, limit int) ([]entities.HistoryRecord, error) {
	query := `
		SELECT id, operation_id, interface_name, operation, backend, requested_mode,
		       final_state, furthest_state, error_type, error_message, started_at, duration_ms
		FROM configuration_history
		WHERE interface_name = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, name, limit)
	metrics.RecordDBQuery("select_history", time.Since(start).Seconds())
	if err != nil {
		return nil, errors.NewPersistenceError("failed to query history", err)
	}
	defer rows.Close()

	records := []entities.HistoryRecord{}
	for rows.Next() {
		var rec entities.HistoryRecord
		var backend, mode, finalState, furthest string
		var message sql.NullString
		var durationMS int64

		err := rows.Scan(
			&rec.ID,
			&rec.OperationID,
			&rec.Interface,
			&rec.Operation,
			&backend,
			&mode,
			&finalState,
			&furthest,
			&rec.ErrorType,
			&message,
			&rec.StartedAt,
			&durationMS,
		)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan history row")
			continue
		}

		rec.Backend = entities.BackendKind(backend)
		rec.RequestedMode = entities.AddressMode(mode)
		rec.FinalState = entities.ConfigState(finalState)
		rec.FurthestState = entities.ConfigState(furthest)
		if message.Valid {
			rec.ErrorMessage = message.String
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("failed to read history rows", err)
	}
	return records, nil
}

// Ping checks the database connection and updates the connection gauge
func (r *MySQLHistoryRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		metrics.SetDBConnectionStatus(false)
		return errors.NewPersistenceError("database unreachable", err)
	}
	metrics.SetDBConnectionStatus(true)
	return nil
}
