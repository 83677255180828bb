package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// PackageRepository defines persistence operations for Package
type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	GetByID(ctx context.Context, id int64) (*entity.Package, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Package, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateTotals(ctx context.Context, id int64, totalToPay, totalPaid decimal.Decimal) error
	UpdateSchedule(ctx context.Context, id, companyID, bankAccountID int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// LineItemRepository defines persistence operations for LineItem. It doubles
// as the invoice/cash-payment store contract: RecordPayment captures the
// externally-recorded paid amount later copied on authorization.
type LineItemRepository interface {
	Create(ctx context.Context, item *entity.LineItem) error
	GetByID(ctx context.Context, id int64) (*entity.LineItem, error)
	GetByPackageID(ctx context.Context, packageID int64) ([]*entity.LineItem, error)
	RecordPayment(ctx context.Context, id int64, amount decimal.Decimal, description string) error
	UpdateAuthorization(ctx context.Context, item *entity.LineItem) error
}

// FolioRepository defines persistence operations for AuthorizationFolio
type FolioRepository interface {
	Create(ctx context.Context, folio *entity.AuthorizationFolio) error
	GetByID(ctx context.Context, id int64) (*entity.AuthorizationFolio, error)
	GetByCode(ctx context.Context, code string) (*entity.AuthorizationFolio, error)
	// GetLatestByPackageID returns the most-recently-created folio for the
	// package, or nil when none exists. The latest folio governs the
	// blocking/unblocking decision; older folios are history.
	GetLatestByPackageID(ctx context.Context, packageID int64) (*entity.AuthorizationFolio, error)
	ListByPackageID(ctx context.Context, packageID int64) ([]*entity.AuthorizationFolio, error)
	// HasOpenFolio reports whether a non-terminal (pendiente) folio exists
	// for the package. At most one may exist at any time.
	HasOpenFolio(ctx context.Context, packageID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	// MarkRedeemed sets the redeemed flag if and only if it is not already
	// set; it returns false when the folio was already redeemed.
	MarkRedeemed(ctx context.Context, id int64) (bool, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
