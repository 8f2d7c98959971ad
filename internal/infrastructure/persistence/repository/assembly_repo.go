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

// AssemblyRepository implements port.AssemblyRepository
type AssemblyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssemblyRepository creates a new assembly repository
func NewAssemblyRepository(db *sql.DB, logger *zap.Logger) port.AssemblyRepository {
	return &AssemblyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an assembly by ID
func (r *AssemblyRepository) GetByID(ctx context.Context, id int64) (*entity.Assembly, error) {
	query := `
		SELECT id, name, code, city, active, created_at
		FROM assemblies WHERE id = ?
	`

	var assembly entity.Assembly
	var city sql.NullString

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&assembly.ID,
		&assembly.Name,
		&assembly.Code,
		&city,
		&assembly.Active,
		&assembly.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get assembly by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get assembly: %w", err)
	}

	assembly.City = city.String
	return &assembly, nil
}

// List retrieves every assembly
func (r *AssemblyRepository) List(ctx context.Context) ([]*entity.Assembly, error) {
	query := `
		SELECT id, name, code, city, active, created_at
		FROM assemblies ORDER BY code ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list assemblies", zap.Error(err))
		return nil, fmt.Errorf("failed to list assemblies: %w", err)
	}
	defer rows.Close()

	var assemblies []*entity.Assembly
	for rows.Next() {
		var assembly entity.Assembly
		var city sql.NullString

		err := rows.Scan(
			&assembly.ID,
			&assembly.Name,
			&assembly.Code,
			&city,
			&assembly.Active,
			&assembly.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assembly: %w", err)
		}

		assembly.City = city.String
		assemblies = append(assemblies, &assembly)
	}

	return assemblies, rows.Err()
}

// getExecutor returns appropriate executor based on context
func (r *AssemblyRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.AssemblyRepository = (*AssemblyRepository)(nil)
