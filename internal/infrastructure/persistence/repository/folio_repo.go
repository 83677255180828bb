package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// FolioRepository implements port.FolioRepository over sqlite
type FolioRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFolioRepository creates a new folio repository
func NewFolioRepository(db *sql.DB, logger *zap.Logger) port.FolioRepository {
	return &FolioRepository{db: db, logger: logger}
}

const folioColumns = `
	id, code, package_id, status, redeemed, reason, requested_by,
	created_at, resolved_at`

// Create inserts a new pendiente folio. The partial unique index on
// authorization_folios enforces at most one non-terminal folio per package.
func (r *FolioRepository) Create(ctx context.Context, folio *entity.AuthorizationFolio) error {
	query := `
		INSERT INTO authorization_folios (
			code, package_id, status, redeemed, reason, requested_by, created_at
		) VALUES (?, ?, ?, 0, ?, ?, ?)
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query,
		folio.Code,
		folio.PackageID,
		folio.Status,
		folio.Reason,
		folio.RequestedBy,
		folio.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create folio", zap.Error(err))
		return fmt.Errorf("failed to create folio: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	folio.ID = id
	return nil
}

// GetByID retrieves a folio by ID
func (r *FolioRepository) GetByID(ctx context.Context, id int64) (*entity.AuthorizationFolio, error) {
	query := "SELECT" + folioColumns + " FROM authorization_folios WHERE id = ?"
	return r.queryOne(ctx, query, id)
}

// GetByCode retrieves a folio by its generated code
func (r *FolioRepository) GetByCode(ctx context.Context, code string) (*entity.AuthorizationFolio, error) {
	query := "SELECT" + folioColumns + " FROM authorization_folios WHERE code = ?"
	return r.queryOne(ctx, query, code)
}

// GetLatestByPackageID retrieves the most-recently-created folio for a package
func (r *FolioRepository) GetLatestByPackageID(ctx context.Context, packageID int64) (*entity.AuthorizationFolio, error) {
	query := "SELECT" + folioColumns + ` FROM authorization_folios
		WHERE package_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.queryOne(ctx, query, packageID)
}

// ListByPackageID retrieves all folios for a package, newest first
func (r *FolioRepository) ListByPackageID(ctx context.Context, packageID int64) ([]*entity.AuthorizationFolio, error) {
	query := "SELECT" + folioColumns + ` FROM authorization_folios
		WHERE package_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, packageID)
	if err != nil {
		r.logger.Error("Failed to list folios", zap.Int64("package_id", packageID), zap.Error(err))
		return nil, fmt.Errorf("failed to list folios: %w", err)
	}
	defer rows.Close()

	var folios []*entity.AuthorizationFolio
	for rows.Next() {
		folio, err := scanFolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folio: %w", err)
		}
		folios = append(folios, folio)
	}
	return folios, rows.Err()
}

// HasOpenFolio reports whether a pendiente folio exists for the package
func (r *FolioRepository) HasOpenFolio(ctx context.Context, packageID int64) (bool, error) {
	query := "SELECT COUNT(1) FROM authorization_folios WHERE package_id = ? AND status = ?"

	var count int
	err := pick(ctx, r.db).QueryRowContext(ctx, query, packageID, entity.FolioPendiente).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check open folio", zap.Int64("package_id", packageID), zap.Error(err))
		return false, fmt.Errorf("failed to check open folio: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus records the approver's terminal decision
func (r *FolioRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := "UPDATE authorization_folios SET status = ?, resolved_at = CURRENT_TIMESTAMP WHERE id = ?"

	result, err := pick(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update folio status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update folio status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("folio %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

// MarkRedeemed sets the redeemed flag only if it is not already set. The
// conditional update makes redemption atomic even across processes.
func (r *FolioRepository) MarkRedeemed(ctx context.Context, id int64) (bool, error) {
	query := "UPDATE authorization_folios SET redeemed = 1 WHERE id = ? AND redeemed = 0"

	result, err := pick(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to mark folio redeemed", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to mark folio redeemed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *FolioRepository) queryOne(ctx context.Context, query string, arg interface{}) (*entity.AuthorizationFolio, error) {
	folio, err := scanFolio(pick(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get folio", zap.Any("arg", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get folio: %w", err)
	}
	return folio, nil
}

func scanFolio(row rowScanner) (*entity.AuthorizationFolio, error) {
	var folio entity.AuthorizationFolio
	var resolvedAt sql.NullTime

	err := row.Scan(
		&folio.ID,
		&folio.Code,
		&folio.PackageID,
		&folio.Status,
		&folio.Redeemed,
		&folio.Reason,
		&folio.RequestedBy,
		&folio.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolvedAt.Valid {
		folio.ResolvedAt = &resolvedAt.Time
	}
	return &folio, nil
}

// Verify interface compliance
var _ port.FolioRepository = (*FolioRepository)(nil)
