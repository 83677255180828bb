package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
	"github.com/finadmin/tesoreria/internal/domain/money"
)

// DisplayTotals carries the on-screen running totals over all non-rejected
// items. These differ from the package's authorized-only ledger totals while
// items are still pending.
type DisplayTotals struct {
	TotalToPay decimal.Decimal `json:"total_to_pay"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
}

// LedgerService holds a package's line items and exposes the per-item
// authorize/reject operations plus aggregate sums.
type LedgerService interface {
	// ToggleAuthorization applies an authorize (true) or reject (false)
	// decision to one line item and recomputes the package totals. Calling
	// it with the item's current decision is a no-op.
	ToggleAuthorization(ctx context.Context, packageID, lineItemID int64, decision bool) (*entity.Package, error)

	// RecordPayment captures the externally-recorded paid amount for an
	// item. The raw amount may arrive in any upstream encoding; it is
	// normalized before storage.
	RecordPayment(ctx context.Context, lineItemID int64, rawAmount interface{}, description string) error

	// Totals returns the display sums over all non-rejected items.
	Totals(ctx context.Context, packageID int64) (DisplayTotals, error)
}

type ledgerServiceImpl struct {
	packageRepo  port.PackageRepository
	lineItemRepo port.LineItemRepository
	txManager    port.TransactionManager
	locks        *PackageLocks
	logger       Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	packageRepo port.PackageRepository,
	lineItemRepo port.LineItemRepository,
	txManager port.TransactionManager,
	locks *PackageLocks,
	logger Logger,
) LedgerService {
	return &ledgerServiceImpl{
		packageRepo:  packageRepo,
		lineItemRepo: lineItemRepo,
		txManager:    txManager,
		locks:        locks,
		logger:       logger,
	}
}

// ToggleAuthorization applies one authorize/reject decision
func (s *ledgerServiceImpl) ToggleAuthorization(ctx context.Context, packageID, lineItemID int64, decision bool) (*entity.Package, error) {
	unlock := s.locks.Lock(packageID)
	defer unlock()

	var result *entity.Package
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		pkg, err := s.packageRepo.GetByID(txCtx, packageID)
		if err != nil {
			return err
		}
		if pkg == nil {
			return fmt.Errorf("package %d: %w", packageID, entity.ErrNotFound)
		}
		if !pkg.InBorrador() {
			return fmt.Errorf("%w: cannot review items of a package in status %s", entity.ErrInvalidState, pkg.Status)
		}

		items, err := s.lineItemRepo.GetByPackageID(txCtx, packageID)
		if err != nil {
			return err
		}

		var target *entity.LineItem
		for _, item := range items {
			if item.ID == lineItemID {
				target = item
				break
			}
		}
		if target == nil {
			return fmt.Errorf("line item %d in package %d: %w", lineItemID, packageID, entity.ErrNotFound)
		}

		// Idempotent: the current decision already matches.
		if (decision && target.Approved()) || (!decision && target.PaymentRejected()) {
			result = pkg
			return nil
		}

		if decision {
			if target.RecordedPayment.GreaterThan(target.AmountToPay) {
				return fmt.Errorf("line item %d: %w", lineItemID, entity.ErrPaidExceedsToPay)
			}
			target.Authorization = entity.AuthorizationApproved
			target.AmountPaid = target.RecordedPayment
			target.Complete = target.AmountPaid.Equal(target.AmountToPay)
		} else {
			target.Authorization = entity.AuthorizationRejected
			target.AmountPaid = decimal.Zero
			target.Complete = false
		}

		if err := s.lineItemRepo.UpdateAuthorization(txCtx, target); err != nil {
			return fmt.Errorf("update authorization: %w", err)
		}

		totalToPay, totalPaid := LedgerTotals(items)
		if err := s.packageRepo.UpdateTotals(txCtx, packageID, totalToPay, totalPaid); err != nil {
			return fmt.Errorf("update totals: %w", err)
		}

		pkg.TotalToPay = totalToPay
		pkg.TotalPaid = totalPaid
		result = pkg
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to toggle line item authorization",
			"error", err, "package_id", packageID, "line_item_id", lineItemID, "decision", decision)
		return nil, err
	}

	s.logger.Info("Line item authorization toggled",
		"package_id", packageID, "line_item_id", lineItemID, "decision", decision)
	return result, nil
}

// RecordPayment captures the upstream-recorded paid amount for an item
func (s *ledgerServiceImpl) RecordPayment(ctx context.Context, lineItemID int64, rawAmount interface{}, description string) error {
	amount := money.Normalize(rawAmount)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	item, err := s.lineItemRepo.GetByID(ctx, lineItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("line item %d: %w", lineItemID, entity.ErrNotFound)
	}

	if err := s.lineItemRepo.RecordPayment(ctx, lineItemID, amount, description); err != nil {
		s.logger.Error("Failed to record payment", "error", err, "line_item_id", lineItemID)
		return err
	}
	return nil
}

// Totals returns the display sums over all non-rejected items
func (s *ledgerServiceImpl) Totals(ctx context.Context, packageID int64) (DisplayTotals, error) {
	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return DisplayTotals{}, err
	}
	if pkg == nil {
		return DisplayTotals{}, fmt.Errorf("package %d: %w", packageID, entity.ErrNotFound)
	}

	items, err := s.lineItemRepo.GetByPackageID(ctx, packageID)
	if err != nil {
		return DisplayTotals{}, err
	}

	totals := DisplayTotals{TotalToPay: decimal.Zero, TotalPaid: decimal.Zero}
	for _, item := range items {
		if item.PaymentRejected() {
			continue
		}
		totals.TotalToPay = totals.TotalToPay.Add(item.AmountToPay)
		totals.TotalPaid = totals.TotalPaid.Add(item.AmountPaid)
	}
	return totals, nil
}

// LedgerTotals computes the package's ledger totals from its items: toPay
// sums amountToPay over items not rejected, paid sums amountPaid over
// approved items only.
func LedgerTotals(items []*entity.LineItem) (toPay, paid decimal.Decimal) {
	toPay, paid = decimal.Zero, decimal.Zero
	for _, item := range items {
		if item.PaymentRejected() {
			continue
		}
		toPay = toPay.Add(item.AmountToPay)
		if item.Approved() {
			paid = paid.Add(item.AmountPaid)
		}
	}
	return toPay, paid
}
