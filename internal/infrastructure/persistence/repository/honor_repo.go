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

// HonorRepository implements port.HonorRepository
type HonorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHonorRepository creates a new honor grant repository
func NewHonorRepository(db *sql.DB, logger *zap.Logger) port.HonorRepository {
	return &HonorRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new honor grant
func (r *HonorRepository) Create(ctx context.Context, grant *entity.HonorGrant) error {
	query := `
		INSERT INTO honor_grants (
			member_id, honor_type, year, protocol_id, granted_at
		) VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		grant.MemberID,
		grant.HonorType,
		grant.Year,
		grant.ProtocolID,
		grant.GrantedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create honor grant",
			zap.Int64("member_id", grant.MemberID),
			zap.String("honor_type", grant.HonorType),
			zap.Error(err))
		return fmt.Errorf("failed to create honor grant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	grant.ID = id
	return nil
}

// ExistsForMember reports whether the member ever received the honor
func (r *HonorRepository) ExistsForMember(ctx context.Context, memberID int64, honorType string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM honor_grants WHERE member_id = ? AND honor_type = ?
		)
	`

	var exists bool
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, memberID, honorType).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check honor grant",
			zap.Int64("member_id", memberID), zap.Error(err))
		return false, fmt.Errorf("failed to check honor grant: %w", err)
	}

	return exists, nil
}

// ExistsForMemberYear reports whether the member received the honor in a
// specific year
func (r *HonorRepository) ExistsForMemberYear(ctx context.Context, memberID int64, honorType string, year int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM honor_grants
			WHERE member_id = ? AND honor_type = ? AND year = ?
		)
	`

	var exists bool
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, memberID, honorType, year).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check honor grant",
			zap.Int64("member_id", memberID), zap.Int("year", year), zap.Error(err))
		return false, fmt.Errorf("failed to check honor grant: %w", err)
	}

	return exists, nil
}

// ListByMember retrieves every honor granted to a member, oldest first
func (r *HonorRepository) ListByMember(ctx context.Context, memberID int64) ([]*entity.HonorGrant, error) {
	query := `
		SELECT id, member_id, honor_type, year, protocol_id, granted_at
		FROM honor_grants
		WHERE member_id = ?
		ORDER BY granted_at ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, memberID)
	if err != nil {
		r.logger.Error("Failed to list honor grants",
			zap.Int64("member_id", memberID), zap.Error(err))
		return nil, fmt.Errorf("failed to list honor grants: %w", err)
	}
	defer rows.Close()

	var grants []*entity.HonorGrant
	for rows.Next() {
		var grant entity.HonorGrant
		var protocolID sql.NullInt64

		err := rows.Scan(
			&grant.ID,
			&grant.MemberID,
			&grant.HonorType,
			&grant.Year,
			&protocolID,
			&grant.GrantedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan honor grant: %w", err)
		}

		if protocolID.Valid {
			grant.ProtocolID = &protocolID.Int64
		}
		grants = append(grants, &grant)
	}

	return grants, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *HonorRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.HonorRepository = (*HonorRepository)(nil)
