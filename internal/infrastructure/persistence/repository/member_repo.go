package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/sqlite"
)

// MemberRepository implements port.MemberRepository
type MemberRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *sql.DB, logger *zap.Logger) port.MemberRepository {
	return &MemberRepository{
		db:     db,
		logger: logger,
	}
}

const memberColumns = `
	id, assembly_id, account_id, name, cpf, email, member_number,
	status, type, grade, initiation_date, majority_date,
	created_at, updated_at
`

// Create inserts a new member
func (r *MemberRepository) Create(ctx context.Context, member *entity.Member) error {
	query := `
		INSERT INTO members (
			assembly_id, account_id, name, cpf, email, member_number,
			status, type, grade, initiation_date, majority_date,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		member.AssemblyID,
		member.AccountID,
		member.Name,
		member.CPF,
		member.Email,
		member.MemberNumber,
		member.Status,
		member.Type,
		member.Grade,
		member.InitiationDate,
		member.MajorityDate,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create member", zap.String("cpf", member.CPF), zap.Error(err))
		return fmt.Errorf("failed to create member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	member.ID = id
	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*entity.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = ?`

	member, err := r.scanMember(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get member by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetByCPF retrieves a member by CPF
func (r *MemberRepository) GetByCPF(ctx context.Context, cpf string) (*entity.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE cpf = ?`

	member, err := r.scanMember(r.getExecutor(ctx).QueryRowContext(ctx, query, cpf))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get member by CPF", zap.Error(err))
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetByIDs retrieves the members matching the given IDs. Missing IDs are
// silently absent from the result; callers compare lengths when presence
// matters.
func (r *MemberRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE id IN (` +
		strings.Join(placeholders, ", ") + `)`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get members by IDs", zap.Error(err))
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	return r.collectMembers(rows)
}

// ListByAssembly retrieves every member of an assembly
func (r *MemberRepository) ListByAssembly(ctx context.Context, assemblyID int64) ([]*entity.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE assembly_id = ? ORDER BY name ASC`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, assemblyID)
	if err != nil {
		r.logger.Error("Failed to list members", zap.Int64("assembly_id", assemblyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	return r.collectMembers(rows)
}

// Update persists member attribute changes
func (r *MemberRepository) Update(ctx context.Context, member *entity.Member) error {
	query := `
		UPDATE members SET
			account_id = ?, name = ?, email = ?, status = ?, type = ?,
			grade = ?, initiation_date = ?, majority_date = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		member.AccountID,
		member.Name,
		member.Email,
		member.Status,
		member.Type,
		member.Grade,
		member.InitiationDate,
		member.MajorityDate,
		member.UpdatedAt,
		member.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update member", zap.Int64("id", member.ID), zap.Error(err))
		return fmt.Errorf("failed to update member: %w", err)
	}

	return nil
}

// CountByAssemblyAndYear counts members registered to an assembly in a
// calendar year. Used for member number sequencing.
func (r *MemberRepository) CountByAssemblyAndYear(ctx context.Context, assemblyID int64, year int) (int, error) {
	query := `
		SELECT COUNT(*) FROM members
		WHERE assembly_id = ? AND strftime('%Y', created_at) = ?
	`

	var count int
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, assemblyID, fmt.Sprintf("%d", year)).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count members",
			zap.Int64("assembly_id", assemblyID), zap.Int("year", year), zap.Error(err))
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

func (r *MemberRepository) collectMembers(rows *sql.Rows) ([]*entity.Member, error) {
	var members []*entity.Member
	for rows.Next() {
		member, err := r.scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *MemberRepository) scanMember(row rowScanner) (*entity.Member, error) {
	var member entity.Member
	var accountID sql.NullInt64
	var grade sql.NullString
	var initiationDate, majorityDate sql.NullTime

	err := row.Scan(
		&member.ID,
		&member.AssemblyID,
		&accountID,
		&member.Name,
		&member.CPF,
		&member.Email,
		&member.MemberNumber,
		&member.Status,
		&member.Type,
		&grade,
		&initiationDate,
		&majorityDate,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accountID.Valid {
		member.AccountID = &accountID.Int64
	}
	member.Grade = grade.String
	if initiationDate.Valid {
		member.InitiationDate = &initiationDate.Time
	}
	if majorityDate.Valid {
		member.MajorityDate = &majorityDate.Time
	}

	return &member, nil
}

// getExecutor returns appropriate executor based on context
func (r *MemberRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.MemberRepository = (*MemberRepository)(nil)
