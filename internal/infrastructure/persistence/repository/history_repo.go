package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new journal entry. The table carries no update or delete
// path; entries are immutable once written.
func (r *HistoryRepository) Append(ctx context.Context, entry *entity.ProtocolHistory) error {
	query := `
		INSERT INTO protocol_history (
			protocol_id, actor_id, action_type, description,
			previous_state, new_state, note, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		entry.ProtocolID,
		entry.ActorID,
		entry.ActionType,
		entry.Description,
		entry.PreviousState,
		entry.NewState,
		entry.Note,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry",
			zap.Int64("protocol_id", entry.ProtocolID), zap.Error(err))
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByProtocolID retrieves a protocol's journal, oldest first
func (r *HistoryRepository) GetByProtocolID(ctx context.Context, protocolID int64) ([]*entity.ProtocolHistory, error) {
	query := `
		SELECT id, protocol_id, actor_id, action_type, description,
			previous_state, new_state, note, timestamp
		FROM protocol_history
		WHERE protocol_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, protocolID)
	if err != nil {
		r.logger.Error("Failed to get history",
			zap.Int64("protocol_id", protocolID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ProtocolHistory
	for rows.Next() {
		var entry entity.ProtocolHistory
		var previousState, note sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.ProtocolID,
			&entry.ActorID,
			&entry.ActionType,
			&entry.Description,
			&previousState,
			&entry.NewState,
			&note,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.PreviousState = previousState.String
		entry.Note = note.String
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *HistoryRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
