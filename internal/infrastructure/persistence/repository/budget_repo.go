package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
	"github.com/finadmin/tesoreria/internal/domain/money"
)

// BudgetRepository implements the budget and concept directory ports over
// the shared admin database.
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget directory repository
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{db: db, logger: logger}
}

// ListBudgets returns every budget record for the scope and budget month.
// Multiple records may fund the same concept through different routing
// paths; callers sum them before comparison.
func (r *BudgetRepository) ListBudgets(ctx context.Context, companyID, brandID, branchID int64, month string) ([]*entity.Budget, error) {
	query := `
		SELECT id, company_id, brand_id, branch_id, expense_concept_id, month, assigned_amount, created_at
		FROM budgets
		WHERE company_id = ? AND brand_id = ? AND branch_id = ? AND month = ?
		ORDER BY id
	`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, companyID, brandID, branchID, month)
	if err != nil {
		r.logger.Error("Failed to list budgets",
			zap.Int64("company_id", companyID), zap.String("month", month), zap.Error(err))
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*entity.Budget
	for rows.Next() {
		var b entity.Budget
		var assigned string
		if err := rows.Scan(
			&b.ID, &b.CompanyID, &b.BrandID, &b.BranchID,
			&b.ExpenseConceptID, &b.Month, &assigned, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.AssignedAmount = money.Normalize(assigned)
		budgets = append(budgets, &b)
	}
	return budgets, rows.Err()
}

// ListConcepts returns the expense concept reference data
func (r *BudgetRepository) ListConcepts(ctx context.Context) ([]*entity.ExpenseConcept, error) {
	query := "SELECT id, name, category FROM expense_concepts ORDER BY id"

	rows, err := pick(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list concepts", zap.Error(err))
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	defer rows.Close()

	var concepts []*entity.ExpenseConcept
	for rows.Next() {
		var c entity.ExpenseConcept
		if err := rows.Scan(&c.ID, &c.Name, &c.Category); err != nil {
			return nil, fmt.Errorf("failed to scan concept: %w", err)
		}
		concepts = append(concepts, &c)
	}
	return concepts, rows.Err()
}

// Verify interface compliance
var (
	_ port.BudgetDirectory  = (*BudgetRepository)(nil)
	_ port.ConceptDirectory = (*BudgetRepository)(nil)
)
