package entity

import "errors"

// State and lookup errors returned by the treasury gate subsystem. All of
// them are returned as typed results to the caller; nothing is retried here.
var (
	// ErrNotFound is returned when a package, line item, or folio lookup
	// matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is not allowed in the
	// package's or folio's current status.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrBudgetExceeded signals that a send-to-treasury attempt is blocked by
	// an exceeded budget and no folio path exists yet. The budget package
	// wraps it with the itemized verdict.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrFolioRejected is returned when the most recent folio for a package
	// was rejected by the approver; the send is blocked permanently for this
	// package state.
	ErrFolioRejected = errors.New("authorization folio rejected")

	// ErrFolioRequired is returned when a pending or authorized folio exists
	// and the caller did not supply its code.
	ErrFolioRequired = errors.New("authorization folio code required")

	// ErrFolioNotAuthorized is returned when a folio is presented for
	// redemption before the approver authorized it.
	ErrFolioNotAuthorized = errors.New("authorization folio not authorized")

	// ErrFolioMismatch is returned when a folio code belongs to a different
	// package than the one attempting the transition.
	ErrFolioMismatch = errors.New("authorization folio belongs to another package")

	// ErrAlreadyRedeemed is returned on a second redemption attempt for the
	// same folio.
	ErrAlreadyRedeemed = errors.New("authorization folio already redeemed")

	// ErrDeactivationBlocked is returned when deactivating a package whose
	// status forbids it.
	ErrDeactivationBlocked = errors.New("package cannot be deactivated in its current status")

	// ErrPaymentDateMissing is returned when a send attempt finds no payment
	// date to resolve the budget period from.
	ErrPaymentDateMissing = errors.New("payment date is required")

	// ErrBankSelectionMissing is returned when scheduling without a resolved
	// company and bank account.
	ErrBankSelectionMissing = errors.New("company and bank account selection required")

	// ErrPaidExceedsToPay is returned when the recorded payment for an item
	// is larger than its amount to pay.
	ErrPaidExceedsToPay = errors.New("recorded payment exceeds amount to pay")
)
