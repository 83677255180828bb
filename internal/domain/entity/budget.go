package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseConcept is a categorized spending bucket against which budgets are
// assigned and payments are matched. Immutable reference data.
type ExpenseConcept struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Budget assigns an amount to an expense concept for a
// company/brand/branch/month scope. Several Budget records may fund the same
// concept through different routing paths; they are summed before any
// comparison.
type Budget struct {
	ID               int64           `json:"id"`
	CompanyID        int64           `json:"company_id"`
	BrandID          int64           `json:"brand_id"`
	BranchID         int64           `json:"branch_id"`
	ExpenseConceptID int64           `json:"expense_concept_id"`
	Month            string          `json:"month"` // YYYY-MM
	AssignedAmount   decimal.Decimal `json:"assigned_amount"`

	CreatedAt time.Time `json:"created_at"`
}

// BudgetMonth formats a payment date as the YYYY-MM budget period key. The
// payment date's month, not the current calendar month, selects the budget
// period.
func BudgetMonth(paymentDate time.Time) string {
	return paymentDate.Format("2006-01")
}
