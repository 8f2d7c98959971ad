package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/sqlite"
)

// AccountRepository implements port.AccountRepository. Roles are stored as a
// JSON array in a single column.
type AccountRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, logger *zap.Logger) port.AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	roles, err := json.Marshal(account.Roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	query := `
		INSERT INTO accounts (
			name, email, password_hash, type, roles, assembly_id,
			active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Type,
		string(roles),
		account.AssemblyID,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create account", zap.String("email", account.Email), zap.Error(err))
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	account.ID = id
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	query := `
		SELECT id, name, email, password_hash, type, roles, assembly_id,
			active, created_at, updated_at
		FROM accounts WHERE id = ?
	`

	account, err := r.scanAccount(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get account by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	query := `
		SELECT id, name, email, password_hash, type, roles, assembly_id,
			active, created_at, updated_at
		FROM accounts WHERE email = ?
	`

	account, err := r.scanAccount(r.getExecutor(ctx).QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get account by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// UpdateType changes the account's type classification
func (r *AccountRepository) UpdateType(ctx context.Context, id int64, accountType string) error {
	query := `UPDATE accounts SET type = ?, updated_at = ? WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, accountType, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update account type", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update account type: %w", err)
	}

	return nil
}

// UpdateRoles replaces the account's role set
func (r *AccountRepository) UpdateRoles(ctx context.Context, id int64, roles []string) error {
	encoded, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	query := `UPDATE accounts SET roles = ?, updated_at = ? WHERE id = ?`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query, string(encoded), time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update account roles", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update account roles: %w", err)
	}

	return nil
}

func (r *AccountRepository) scanAccount(row rowScanner) (*entity.Account, error) {
	var account entity.Account
	var roles string
	var assemblyID sql.NullInt64

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Type,
		&roles,
		&assemblyID,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(roles), &account.Roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}
	if assemblyID.Valid {
		account.AssemblyID = &assemblyID.Int64
	}

	return &account, nil
}

// getExecutor returns appropriate executor based on context
func (r *AccountRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.AccountRepository = (*AccountRepository)(nil)
