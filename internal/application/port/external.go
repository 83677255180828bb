package port

import (
	"context"

	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// BudgetDirectory resolves the assigned budgets for a package's scope and
// budget period. Collaborator errors surface as-is and abort the caller's
// transition with no state change.
type BudgetDirectory interface {
	ListBudgets(ctx context.Context, companyID, brandID, branchID int64, month string) ([]*entity.Budget, error)
}

// ConceptDirectory resolves expense concept reference data.
type ConceptDirectory interface {
	ListConcepts(ctx context.Context) ([]*entity.ExpenseConcept, error)
}

// CompanyDirectory resolves companies and their bank accounts for payment
// scheduling.
type CompanyDirectory interface {
	ListCompanies(ctx context.Context) ([]*entity.Company, error)
	ListBankAccounts(ctx context.Context, companyID int64) ([]*entity.BankAccount, error)
}

// TimelineSink records package status changes. Append is fire-and-forget:
// callers log failures and never block a transition on them.
type TimelineSink interface {
	Append(ctx context.Context, packageID int64, status, note string) error
	ListByPackageID(ctx context.Context, packageID int64) ([]*entity.TimelineEntry, error)
}

// ApproverNotifier tells the configured approver that a folio awaits a
// decision. Failures are logged, never propagated.
type ApproverNotifier interface {
	NotifyFolioRequested(ctx context.Context, folio *entity.AuthorizationFolio, pkg *entity.Package) error
}
