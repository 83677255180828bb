package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package represents a batch of invoices and/or cash payments submitted
// together for treasury processing.
type Package struct {
	ID          int64  `json:"id"`
	FolioNumber int64  `json:"folio_number"`
	Status      string `json:"status"`

	CompanyID int64 `json:"company_id"`
	BrandID   int64 `json:"brand_id"`
	BranchID  int64 `json:"branch_id"`

	PaymentDate time.Time `json:"payment_date"`

	// Derived ledger totals. TotalPaid sums amountPaid over approved items;
	// TotalToPay sums amountToPay over items not rejected.
	TotalToPay decimal.Decimal `json:"total_to_pay"`
	TotalPaid  decimal.Decimal `json:"total_paid"`

	// Schedule selection, set by the Enviado -> Programado transition.
	ScheduledCompanyID     int64 `json:"scheduled_company_id,omitempty"`
	ScheduledBankAccountID int64 `json:"scheduled_bank_account_id,omitempty"`

	Department string `json:"department,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InBorrador reports whether the package is still in its draft stage.
func (p *Package) InBorrador() bool {
	return p.Status == StatusBorrador
}

// DeactivationBlocked reports whether the soft-delete rule gate applies.
// Packages that already generated payments or are scheduled cannot be
// deactivated.
func (p *Package) DeactivationBlocked() bool {
	return p.Status == StatusGenerado || p.Status == StatusProgramado
}
