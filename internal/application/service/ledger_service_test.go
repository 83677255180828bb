package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// Mock repositories
type mockPackageRepo struct {
	createFunc         func(ctx context.Context, pkg *entity.Package) error
	getByIDFunc        func(ctx context.Context, id int64) (*entity.Package, error)
	listFunc           func(ctx context.Context, limit, offset int) ([]*entity.Package, error)
	updateStatusFunc   func(ctx context.Context, id int64, status string) error
	updateTotalsFunc   func(ctx context.Context, id int64, totalToPay, totalPaid decimal.Decimal) error
	updateScheduleFunc func(ctx context.Context, id, companyID, bankAccountID int64) error
	setActiveFunc      func(ctx context.Context, id int64, active bool) error
}

func (m *mockPackageRepo) Create(ctx context.Context, pkg *entity.Package) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, pkg)
	}
	pkg.ID = 1
	return nil
}

func (m *mockPackageRepo) GetByID(ctx context.Context, id int64) (*entity.Package, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Package{ID: id, Status: entity.StatusBorrador, Active: true}, nil
}

func (m *mockPackageRepo) List(ctx context.Context, limit, offset int) ([]*entity.Package, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.Package{}, nil
}

func (m *mockPackageRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockPackageRepo) UpdateTotals(ctx context.Context, id int64, totalToPay, totalPaid decimal.Decimal) error {
	if m.updateTotalsFunc != nil {
		return m.updateTotalsFunc(ctx, id, totalToPay, totalPaid)
	}
	return nil
}

func (m *mockPackageRepo) UpdateSchedule(ctx context.Context, id, companyID, bankAccountID int64) error {
	if m.updateScheduleFunc != nil {
		return m.updateScheduleFunc(ctx, id, companyID, bankAccountID)
	}
	return nil
}

func (m *mockPackageRepo) SetActive(ctx context.Context, id int64, active bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, id, active)
	}
	return nil
}

type mockLineItemRepo struct {
	createFunc              func(ctx context.Context, item *entity.LineItem) error
	getByIDFunc             func(ctx context.Context, id int64) (*entity.LineItem, error)
	getByPackageIDFunc      func(ctx context.Context, packageID int64) ([]*entity.LineItem, error)
	recordPaymentFunc       func(ctx context.Context, id int64, amount decimal.Decimal, description string) error
	updateAuthorizationFunc func(ctx context.Context, item *entity.LineItem) error
}

func (m *mockLineItemRepo) Create(ctx context.Context, item *entity.LineItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	return nil
}

func (m *mockLineItemRepo) GetByID(ctx context.Context, id int64) (*entity.LineItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.LineItem{ID: id, Authorization: entity.AuthorizationPending}, nil
}

func (m *mockLineItemRepo) GetByPackageID(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
	if m.getByPackageIDFunc != nil {
		return m.getByPackageIDFunc(ctx, packageID)
	}
	return []*entity.LineItem{}, nil
}

func (m *mockLineItemRepo) RecordPayment(ctx context.Context, id int64, amount decimal.Decimal, description string) error {
	if m.recordPaymentFunc != nil {
		return m.recordPaymentFunc(ctx, id, amount, description)
	}
	return nil
}

func (m *mockLineItemRepo) UpdateAuthorization(ctx context.Context, item *entity.LineItem) error {
	if m.updateAuthorizationFunc != nil {
		return m.updateAuthorizationFunc(ctx, item)
	}
	return nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func borradorPackage(id int64) *entity.Package {
	return &entity.Package{ID: id, Status: entity.StatusBorrador, Active: true}
}

func TestLedgerService_ToggleAuthorization_Approve(t *testing.T) {
	items := []*entity.LineItem{
		{ID: 10, PackageID: 1, AmountToPay: dec("500"), RecordedPayment: dec("500"), Authorization: entity.AuthorizationPending},
		{ID: 11, PackageID: 1, AmountToPay: dec("300"), RecordedPayment: dec("300"), AmountPaid: dec("300"), Authorization: entity.AuthorizationApproved},
	}

	var updated *entity.LineItem
	var savedToPay, savedPaid decimal.Decimal

	packageRepo := &mockPackageRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Package, error) {
			return borradorPackage(id), nil
		},
		updateTotalsFunc: func(ctx context.Context, id int64, totalToPay, totalPaid decimal.Decimal) error {
			savedToPay, savedPaid = totalToPay, totalPaid
			return nil
		},
	}
	lineItemRepo := &mockLineItemRepo{
		getByPackageIDFunc: func(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
			return items, nil
		},
		updateAuthorizationFunc: func(ctx context.Context, item *entity.LineItem) error {
			updated = item
			return nil
		},
	}

	svc := NewLedgerService(packageRepo, lineItemRepo, &mockTxManager{}, NewPackageLocks(), &mockLogger{})

	pkg, err := svc.ToggleAuthorization(context.Background(), 1, 10, true)
	if err != nil {
		t.Fatalf("ToggleAuthorization() error = %v", err)
	}

	if updated == nil || updated.Authorization != entity.AuthorizationApproved {
		t.Errorf("item authorization = %v, want APPROVED", updated)
	}
	if !updated.AmountPaid.Equal(dec("500")) {
		t.Errorf("item AmountPaid = %v, want 500", updated.AmountPaid)
	}
	if !updated.Complete {
		t.Errorf("item Complete = false, want true when paid equals to-pay")
	}
	if !savedToPay.Equal(dec("800")) || !savedPaid.Equal(dec("800")) {
		t.Errorf("totals = %v/%v, want 800/800", savedToPay, savedPaid)
	}
	if !pkg.TotalPaid.Equal(dec("800")) {
		t.Errorf("pkg.TotalPaid = %v, want 800", pkg.TotalPaid)
	}
}

func TestLedgerService_ToggleAuthorization_RejectResetsPayment(t *testing.T) {
	items := []*entity.LineItem{
		{ID: 10, PackageID: 1, AmountToPay: dec("500"), RecordedPayment: dec("500"), AmountPaid: dec("500"), Authorization: entity.AuthorizationApproved, Complete: true},
		{ID: 11, PackageID: 1, AmountToPay: dec("300"), RecordedPayment: dec("300"), AmountPaid: dec("300"), Authorization: entity.AuthorizationApproved},
	}

	var savedToPay, savedPaid decimal.Decimal
	packageRepo := &mockPackageRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Package, error) {
			return borradorPackage(id), nil
		},
		updateTotalsFunc: func(ctx context.Context, id int64, totalToPay, totalPaid decimal.Decimal) error {
			savedToPay, savedPaid = totalToPay, totalPaid
			return nil
		},
	}
	lineItemRepo := &mockLineItemRepo{
		getByPackageIDFunc: func(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
			return items, nil
		},
	}

	svc := NewLedgerService(packageRepo, lineItemRepo, &mockTxManager{}, NewPackageLocks(), &mockLogger{})

	if _, err := svc.ToggleAuthorization(context.Background(), 1, 10, false); err != nil {
		t.Fatalf("ToggleAuthorization() error = %v", err)
	}

	if !items[0].PaymentRejected() {
		t.Errorf("item authorization = %v, want REJECTED", items[0].Authorization)
	}
	if !items[0].AmountPaid.IsZero() {
		t.Errorf("rejected item AmountPaid = %v, want 0", items[0].AmountPaid)
	}
	if items[0].Complete {
		t.Errorf("rejected item Complete = true, want false")
	}
	// Rejected items leave both sums entirely.
	if !savedToPay.Equal(dec("300")) || !savedPaid.Equal(dec("300")) {
		t.Errorf("totals = %v/%v, want 300/300", savedToPay, savedPaid)
	}
}

func TestLedgerService_ToggleAuthorization_Idempotent(t *testing.T) {
	items := []*entity.LineItem{
		{ID: 10, PackageID: 1, AmountToPay: dec("500"), RecordedPayment: dec("500"), AmountPaid: dec("500"), Authorization: entity.AuthorizationApproved},
	}

	updateCalls := 0
	packageRepo := &mockPackageRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Package, error) {
			return borradorPackage(id), nil
		},
	}
	lineItemRepo := &mockLineItemRepo{
		getByPackageIDFunc: func(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
			return items, nil
		},
		updateAuthorizationFunc: func(ctx context.Context, item *entity.LineItem) error {
			updateCalls++
			return nil
		},
	}

	svc := NewLedgerService(packageRepo, lineItemRepo, &mockTxManager{}, NewPackageLocks(), &mockLogger{})

	if _, err := svc.ToggleAuthorization(context.Background(), 1, 10, true); err != nil {
		t.Fatalf("ToggleAuthorization() error = %v", err)
	}
	if updateCalls != 0 {
		t.Errorf("repeated decision wrote %d updates, want 0", updateCalls)
	}
}

func TestLedgerService_ToggleAuthorization_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pkg     *entity.Package
		items   []*entity.LineItem
		itemID  int64
		wantErr error
	}{
		{
			name:    "package not found",
			pkg:     nil,
			itemID:  10,
			wantErr: entity.ErrNotFound,
		},
		{
			name:    "package not in draft",
			pkg:     &entity.Package{ID: 1, Status: entity.StatusEnviado},
			itemID:  10,
			wantErr: entity.ErrInvalidState,
		},
		{
			name:    "line item not found",
			pkg:     borradorPackage(1),
			items:   []*entity.LineItem{{ID: 99, PackageID: 1}},
			itemID:  10,
			wantErr: entity.ErrNotFound,
		},
		{
			name: "recorded payment exceeds amount to pay",
			pkg:  borradorPackage(1),
			items: []*entity.LineItem{
				{ID: 10, PackageID: 1, AmountToPay: dec("500"), RecordedPayment: dec("600"), Authorization: entity.AuthorizationPending},
			},
			itemID:  10,
			wantErr: entity.ErrPaidExceedsToPay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packageRepo := &mockPackageRepo{
				getByIDFunc: func(ctx context.Context, id int64) (*entity.Package, error) {
					return tt.pkg, nil
				},
			}
			lineItemRepo := &mockLineItemRepo{
				getByPackageIDFunc: func(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
					return tt.items, nil
				},
			}

			svc := NewLedgerService(packageRepo, lineItemRepo, &mockTxManager{}, NewPackageLocks(), &mockLogger{})

			_, err := svc.ToggleAuthorization(context.Background(), 1, tt.itemID, true)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ToggleAuthorization() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerService_RecordPayment_NormalizesAmount(t *testing.T) {
	var recorded decimal.Decimal
	lineItemRepo := &mockLineItemRepo{
		recordPaymentFunc: func(ctx context.Context, id int64, amount decimal.Decimal, description string) error {
			recorded = amount
			return nil
		},
	}

	svc := NewLedgerService(&mockPackageRepo{}, lineItemRepo, &mockTxManager{}, NewPackageLocks(), &mockLogger{})

	// Wrapped decimal document, as delivered by the upstream recorder.
	raw := map[string]interface{}{"$numberDecimal": "1234.56"}
	if err := svc.RecordPayment(context.Background(), 10, raw, "transfer"); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if !recorded.Equal(dec("1234.56")) {
		t.Errorf("recorded amount = %v, want 1234.56", recorded)
	}

	// Malformed input degrades to zero rather than failing the write.
	if err := svc.RecordPayment(context.Background(), 10, "not-a-number", ""); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if !recorded.IsZero() {
		t.Errorf("recorded amount = %v, want 0 for malformed input", recorded)
	}
}

func TestLedgerService_Totals_SkipsRejected(t *testing.T) {
	packageRepo := &mockPackageRepo{}
	lineItemRepo := &mockLineItemRepo{
		getByPackageIDFunc: func(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
			return []*entity.LineItem{
				{ID: 1, AmountToPay: dec("100"), AmountPaid: dec("100"), Authorization: entity.AuthorizationApproved},
				{ID: 2, AmountToPay: dec("200"), Authorization: entity.AuthorizationPending},
				{ID: 3, AmountToPay: dec("400"), Authorization: entity.AuthorizationRejected},
			}, nil
		},
	}

	svc := NewLedgerService(packageRepo, lineItemRepo, &mockTxManager{}, NewPackageLocks(), &mockLogger{})

	totals, err := svc.Totals(context.Background(), 1)
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if !totals.TotalToPay.Equal(dec("300")) {
		t.Errorf("TotalToPay = %v, want 300", totals.TotalToPay)
	}
	if !totals.TotalPaid.Equal(dec("100")) {
		t.Errorf("TotalPaid = %v, want 100", totals.TotalPaid)
	}
}
