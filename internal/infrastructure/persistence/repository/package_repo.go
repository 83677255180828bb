package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
	"github.com/finadmin/tesoreria/internal/domain/money"
)

// PackageRepository implements port.PackageRepository over sqlite
type PackageRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *sql.DB, logger *zap.Logger) port.PackageRepository {
	return &PackageRepository{db: db, logger: logger}
}

const packageColumns = `
	id, folio_number, status, company_id, brand_id, branch_id,
	payment_date, total_to_pay, total_paid,
	scheduled_company_id, scheduled_bank_account_id,
	department, created_by, active, created_at, updated_at`

// Create inserts a new package, assigning the next sequential folio number
func (r *PackageRepository) Create(ctx context.Context, pkg *entity.Package) error {
	query := `
		INSERT INTO packages (
			folio_number, status, company_id, brand_id, branch_id,
			payment_date, total_to_pay, total_paid, department, created_by, active
		) VALUES (
			(SELECT COALESCE(MAX(folio_number), 0) + 1 FROM packages),
			?, ?, ?, ?, ?, ?, ?, ?, ?, 1
		)
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query,
		pkg.Status,
		pkg.CompanyID,
		pkg.BrandID,
		pkg.BranchID,
		pkg.PaymentDate,
		pkg.TotalToPay.String(),
		pkg.TotalPaid.String(),
		pkg.Department,
		pkg.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create package", zap.Error(err))
		return fmt.Errorf("failed to create package: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	pkg.ID = id
	pkg.Active = true

	return pick(ctx, r.db).QueryRowContext(ctx,
		"SELECT folio_number FROM packages WHERE id = ?", id).Scan(&pkg.FolioNumber)
}

// GetByID retrieves a package by ID
func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*entity.Package, error) {
	query := "SELECT" + packageColumns + " FROM packages WHERE id = ?"

	pkg, err := scanPackage(pick(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get package by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return pkg, nil
}

// List retrieves packages ordered by creation, newest first
func (r *PackageRepository) List(ctx context.Context, limit, offset int) ([]*entity.Package, error) {
	query := "SELECT" + packageColumns + ` FROM packages
		WHERE active = 1
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list packages", zap.Error(err))
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*entity.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, pkg)
	}
	return packages, rows.Err()
}

// UpdateStatus updates the package status
func (r *PackageRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := "UPDATE packages SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

	result, err := pick(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update package status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update package status: %w", err)
	}
	return requireRow(result, id)
}

// UpdateTotals persists the derived ledger totals
func (r *PackageRepository) UpdateTotals(ctx context.Context, id int64, totalToPay, totalPaid decimal.Decimal) error {
	query := "UPDATE packages SET total_to_pay = ?, total_paid = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

	result, err := pick(ctx, r.db).ExecContext(ctx, query, totalToPay.String(), totalPaid.String(), id)
	if err != nil {
		r.logger.Error("Failed to update package totals", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update package totals: %w", err)
	}
	return requireRow(result, id)
}

// UpdateSchedule records the company and bank account selection
func (r *PackageRepository) UpdateSchedule(ctx context.Context, id, companyID, bankAccountID int64) error {
	query := `UPDATE packages
		SET scheduled_company_id = ?, scheduled_bank_account_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, companyID, bankAccountID, id)
	if err != nil {
		r.logger.Error("Failed to update package schedule", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update package schedule: %w", err)
	}
	return requireRow(result, id)
}

// SetActive toggles the soft-delete flag
func (r *PackageRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := "UPDATE packages SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

	result, err := pick(ctx, r.db).ExecContext(ctx, query, active, id)
	if err != nil {
		r.logger.Error("Failed to set package active flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set package active flag: %w", err)
	}
	return requireRow(result, id)
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPackage(row rowScanner) (*entity.Package, error) {
	var pkg entity.Package
	var totalToPay, totalPaid string
	var scheduledCompany, scheduledAccount sql.NullInt64

	err := row.Scan(
		&pkg.ID,
		&pkg.FolioNumber,
		&pkg.Status,
		&pkg.CompanyID,
		&pkg.BrandID,
		&pkg.BranchID,
		&pkg.PaymentDate,
		&totalToPay,
		&totalPaid,
		&scheduledCompany,
		&scheduledAccount,
		&pkg.Department,
		&pkg.CreatedBy,
		&pkg.Active,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	pkg.TotalToPay = money.Normalize(totalToPay)
	pkg.TotalPaid = money.Normalize(totalPaid)
	if scheduledCompany.Valid {
		pkg.ScheduledCompanyID = scheduledCompany.Int64
	}
	if scheduledAccount.Valid {
		pkg.ScheduledBankAccountID = scheduledAccount.Int64
	}
	return &pkg, nil
}

func requireRow(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("package %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

// Verify interface compliance
var _ port.PackageRepository = (*PackageRepository)(nil)
