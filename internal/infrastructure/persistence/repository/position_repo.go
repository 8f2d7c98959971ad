package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/sqlite"
)

// PositionRepository implements port.PositionRepository
type PositionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPositionRepository creates a new position assignment repository
func NewPositionRepository(db *sql.DB, logger *zap.Logger) port.PositionRepository {
	return &PositionRepository{
		db:     db,
		logger: logger,
	}
}

const positionColumns = `
	id, assembly_id, category, position, member_id, protocol_id,
	assigned_by, start_date, end_date, created_at
`

// Create inserts a new position assignment
func (r *PositionRepository) Create(ctx context.Context, assignment *entity.PositionAssignment) error {
	query := `
		INSERT INTO position_assignments (
			assembly_id, category, position, member_id, protocol_id,
			assigned_by, start_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		assignment.AssemblyID,
		assignment.Category,
		assignment.Position,
		assignment.MemberID,
		assignment.ProtocolID,
		assignment.AssignedBy,
		assignment.StartDate,
		assignment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create position assignment",
			zap.String("position", assignment.Position), zap.Error(err))
		return fmt.Errorf("failed to create position assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	assignment.ID = id
	return nil
}

// GetOpenByAssembly retrieves the open assignments of one category in an assembly
func (r *PositionRepository) GetOpenByAssembly(ctx context.Context, assemblyID int64, category string) ([]*entity.PositionAssignment, error) {
	query := `SELECT ` + positionColumns + `
		FROM position_assignments
		WHERE assembly_id = ? AND category = ? AND end_date IS NULL
		ORDER BY position ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, assemblyID, category)
	if err != nil {
		r.logger.Error("Failed to get open assignments",
			zap.Int64("assembly_id", assemblyID), zap.String("category", category), zap.Error(err))
		return nil, fmt.Errorf("failed to get open assignments: %w", err)
	}
	defer rows.Close()

	return r.collectAssignments(rows)
}

// GetOpenByMember retrieves every open assignment held by a member
func (r *PositionRepository) GetOpenByMember(ctx context.Context, memberID int64) ([]*entity.PositionAssignment, error) {
	query := `SELECT ` + positionColumns + `
		FROM position_assignments
		WHERE member_id = ? AND end_date IS NULL
		ORDER BY start_date ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to get member assignments",
			zap.Int64("member_id", memberID), zap.Error(err))
		return nil, fmt.Errorf("failed to get member assignments: %w", err)
	}
	defer rows.Close()

	return r.collectAssignments(rows)
}

// Close stamps an assignment's end date
func (r *PositionRepository) Close(ctx context.Context, id int64, endDate time.Time) error {
	query := `UPDATE position_assignments SET end_date = ? WHERE id = ? AND end_date IS NULL`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, endDate, id)
	if err != nil {
		r.logger.Error("Failed to close assignment", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to close assignment: %w", err)
	}

	return nil
}

func (r *PositionRepository) collectAssignments(rows *sql.Rows) ([]*entity.PositionAssignment, error) {
	var assignments []*entity.PositionAssignment
	for rows.Next() {
		var assignment entity.PositionAssignment
		var protocolID sql.NullInt64
		var endDate sql.NullTime

		err := rows.Scan(
			&assignment.ID,
			&assignment.AssemblyID,
			&assignment.Category,
			&assignment.Position,
			&assignment.MemberID,
			&protocolID,
			&assignment.AssignedBy,
			&assignment.StartDate,
			&endDate,
			&assignment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}

		if protocolID.Valid {
			assignment.ProtocolID = &protocolID.Int64
		}
		if endDate.Valid {
			assignment.EndDate = &endDate.Time
		}
		assignments = append(assignments, &assignment)
	}

	return assignments, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *PositionRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.PositionRepository = (*PositionRepository)(nil)
