package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/sqlite"
)

// ProtocolRepository implements port.ProtocolRepository
type ProtocolRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProtocolRepository creates a new protocol repository
func NewProtocolRepository(db *sql.DB, logger *zap.Logger) port.ProtocolRepository {
	return &ProtocolRepository{
		db:     db,
		logger: logger,
	}
}

const protocolColumns = `
	id, code, type, current_step, status, assembly_id, requester_id,
	approver_id, member_data, ceremony_date, fee_cents, fee_notes,
	receipt_path, payment_confirmed, feedback, approved_at, archived_at,
	created_at, updated_at
`

// Create inserts a new protocol
func (r *ProtocolRepository) Create(ctx context.Context, protocol *entity.Protocol) error {
	query := `
		INSERT INTO protocols (
			code, type, current_step, status, assembly_id, requester_id,
			member_data, ceremony_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		protocol.Code,
		string(protocol.Type),
		protocol.CurrentStep,
		protocol.Status,
		protocol.AssemblyID,
		protocol.RequesterID,
		protocol.MemberData,
		protocol.CeremonyDate,
		protocol.CreatedAt,
		protocol.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create protocol", zap.String("code", protocol.Code), zap.Error(err))
		return fmt.Errorf("failed to create protocol: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	protocol.ID = id
	return nil
}

// GetByID retrieves a protocol by ID
func (r *ProtocolRepository) GetByID(ctx context.Context, id int64) (*entity.Protocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM protocols WHERE id = ?`

	protocol, err := r.scanProtocol(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get protocol by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}

	return protocol, nil
}

// GetByCode retrieves a protocol by its public code
func (r *ProtocolRepository) GetByCode(ctx context.Context, code string) (*entity.Protocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM protocols WHERE code = ?`

	protocol, err := r.scanProtocol(r.getExecutor(ctx).QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get protocol by code", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}

	return protocol, nil
}

// Update persists the protocol guarded by a compare-and-swap on the step
// name. Zero affected rows means another transition already moved the
// protocol off fromStep.
func (r *ProtocolRepository) Update(ctx context.Context, protocol *entity.Protocol, fromStep string) error {
	query := `
		UPDATE protocols SET
			current_step = ?, status = ?, approver_id = ?, member_data = ?,
			ceremony_date = ?, fee_cents = ?, fee_notes = ?, receipt_path = ?,
			payment_confirmed = ?, feedback = ?, approved_at = ?, archived_at = ?,
			updated_at = ?
		WHERE id = ? AND current_step = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		protocol.CurrentStep,
		protocol.Status,
		protocol.ApproverID,
		protocol.MemberData,
		protocol.CeremonyDate,
		protocol.FeeCents,
		protocol.FeeNotes,
		protocol.ReceiptPath,
		protocol.PaymentConfirmed,
		protocol.Feedback,
		protocol.ApprovedAt,
		protocol.ArchivedAt,
		protocol.UpdatedAt,
		protocol.ID,
		fromStep,
	)
	if err != nil {
		r.logger.Error("Failed to update protocol", zap.Int64("id", protocol.ID), zap.Error(err))
		return fmt.Errorf("failed to update protocol: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: protocol %d is no longer in step %s",
			workflow.ErrConcurrentTransition, protocol.ID, fromStep)
	}

	return nil
}

// List retrieves protocols matching the filter, newest first
func (r *ProtocolRepository) List(ctx context.Context, filter port.ProtocolFilter) ([]*entity.Protocol, error) {
	var conditions []string
	var args []interface{}

	if filter.AssemblyID != nil {
		conditions = append(conditions, "assembly_id = ?")
		args = append(args, *filter.AssemblyID)
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + protocolColumns + ` FROM protocols`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list protocols", zap.Error(err))
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}
	defer rows.Close()

	var protocols []*entity.Protocol
	for rows.Next() {
		protocol, err := r.scanProtocol(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan protocol: %w", err)
		}
		protocols = append(protocols, protocol)
	}

	return protocols, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ProtocolRepository) scanProtocol(row rowScanner) (*entity.Protocol, error) {
	var protocol entity.Protocol
	var protocolType string
	var approverID, feeCents sql.NullInt64
	var ceremonyDate, approvedAt, archivedAt sql.NullTime
	var feeNotes, receiptPath, feedback sql.NullString

	err := row.Scan(
		&protocol.ID,
		&protocol.Code,
		&protocolType,
		&protocol.CurrentStep,
		&protocol.Status,
		&protocol.AssemblyID,
		&protocol.RequesterID,
		&approverID,
		&protocol.MemberData,
		&ceremonyDate,
		&feeCents,
		&feeNotes,
		&receiptPath,
		&protocol.PaymentConfirmed,
		&feedback,
		&approvedAt,
		&archivedAt,
		&protocol.CreatedAt,
		&protocol.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	protocol.Type = entity.ProtocolType(protocolType)
	if approverID.Valid {
		protocol.ApproverID = &approverID.Int64
	}
	if feeCents.Valid {
		protocol.FeeCents = &feeCents.Int64
	}
	if ceremonyDate.Valid {
		protocol.CeremonyDate = &ceremonyDate.Time
	}
	if approvedAt.Valid {
		protocol.ApprovedAt = &approvedAt.Time
	}
	if archivedAt.Valid {
		protocol.ArchivedAt = &archivedAt.Time
	}
	protocol.FeeNotes = feeNotes.String
	protocol.ReceiptPath = receiptPath.String
	protocol.Feedback = feedback.String

	return &protocol, nil
}

// getExecutor returns appropriate executor based on context
func (r *ProtocolRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.ProtocolRepository = (*ProtocolRepository)(nil)
