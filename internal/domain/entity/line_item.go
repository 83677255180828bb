package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem represents a single invoice or cash payment inside a package.
// Authorization is a tri-state: PENDING until a reviewer decides, then
// APPROVED or REJECTED. PaymentRejected is derived from it, never stored
// independently.
type LineItem struct {
	ID        int64  `json:"id"`
	PackageID int64  `json:"package_id"`
	Kind      string `json:"kind"`

	Description string `json:"description,omitempty"`

	AmountToPay decimal.Decimal `json:"amount_to_pay"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`

	// RecordedPayment is the amount captured by the upstream
	// payment-recording step; it is copied into AmountPaid when the item is
	// approved.
	RecordedPayment    decimal.Decimal `json:"recorded_payment"`
	PaymentDescription string          `json:"payment_description,omitempty"`

	ExpenseConceptID *int64 `json:"expense_concept_id,omitempty"`

	Authorization string `json:"authorization"`
	Complete      bool   `json:"complete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Approved reports whether the item has been authorized for payment.
func (li *LineItem) Approved() bool {
	return li.Authorization == AuthorizationApproved
}

// PaymentRejected reports whether the item's payment was rejected. Derived
// from the tri-state authorization, by definition true exactly when the
// reviewer rejected the item.
func (li *LineItem) PaymentRejected() bool {
	return li.Authorization == AuthorizationRejected
}
