package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// CompanyRepository implements port.CompanyDirectory over the shared admin
// database.
type CompanyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company directory repository
func NewCompanyRepository(db *sql.DB, logger *zap.Logger) port.CompanyDirectory {
	return &CompanyRepository{db: db, logger: logger}
}

// ListCompanies returns all companies
func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]*entity.Company, error) {
	query := "SELECT id, name FROM companies ORDER BY name"

	rows, err := pick(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list companies", zap.Error(err))
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, &c)
	}
	return companies, rows.Err()
}

// ListBankAccounts returns the bank accounts belonging to a company
func (r *CompanyRepository) ListBankAccounts(ctx context.Context, companyID int64) ([]*entity.BankAccount, error) {
	query := "SELECT id, company_id, bank_name, number FROM bank_accounts WHERE company_id = ? ORDER BY id"

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list bank accounts", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entity.BankAccount
	for rows.Next() {
		var a entity.BankAccount
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.BankName, &a.Number); err != nil {
			return nil, fmt.Errorf("failed to scan bank account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// Verify interface compliance
var _ port.CompanyDirectory = (*CompanyRepository)(nil)
