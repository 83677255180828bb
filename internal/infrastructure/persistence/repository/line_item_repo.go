package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
	"github.com/finadmin/tesoreria/internal/domain/money"
)

// LineItemRepository implements port.LineItemRepository over sqlite
type LineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *sql.DB, logger *zap.Logger) port.LineItemRepository {
	return &LineItemRepository{db: db, logger: logger}
}

const lineItemColumns = `
	id, package_id, kind, description, amount_to_pay, amount_paid,
	recorded_payment, payment_description, expense_concept_id,
	authorization, complete, created_at, updated_at`

// Create inserts a new line item
func (r *LineItemRepository) Create(ctx context.Context, item *entity.LineItem) error {
	query := `
		INSERT INTO line_items (
			package_id, kind, description, amount_to_pay, amount_paid,
			recorded_payment, payment_description, expense_concept_id,
			authorization, complete
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := pick(ctx, r.db).ExecContext(ctx, query,
		item.PackageID,
		item.Kind,
		item.Description,
		item.AmountToPay.String(),
		item.AmountPaid.String(),
		item.RecordedPayment.String(),
		item.PaymentDescription,
		item.ExpenseConceptID,
		item.Authorization,
		item.Complete,
	)
	if err != nil {
		r.logger.Error("Failed to create line item", zap.Error(err))
		return fmt.Errorf("failed to create line item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

// GetByID retrieves a line item by ID
func (r *LineItemRepository) GetByID(ctx context.Context, id int64) (*entity.LineItem, error) {
	query := "SELECT" + lineItemColumns + " FROM line_items WHERE id = ?"

	item, err := scanLineItem(pick(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get line item by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}
	return item, nil
}

// GetByPackageID retrieves all line items for a package in insertion order
func (r *LineItemRepository) GetByPackageID(ctx context.Context, packageID int64) ([]*entity.LineItem, error) {
	query := "SELECT" + lineItemColumns + " FROM line_items WHERE package_id = ? ORDER BY id"

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, packageID)
	if err != nil {
		r.logger.Error("Failed to get line items", zap.Int64("package_id", packageID), zap.Error(err))
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []*entity.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RecordPayment captures the externally-recorded paid amount
func (r *LineItemRepository) RecordPayment(ctx context.Context, id int64, amount decimal.Decimal, description string) error {
	query := `UPDATE line_items
		SET recorded_payment = ?, payment_description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := pick(ctx, r.db).ExecContext(ctx, query, amount.String(), description, id)
	if err != nil {
		r.logger.Error("Failed to record payment", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to record payment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("line item %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

// UpdateAuthorization persists the tri-state decision with its derived fields
func (r *LineItemRepository) UpdateAuthorization(ctx context.Context, item *entity.LineItem) error {
	query := `UPDATE line_items
		SET authorization = ?, amount_paid = ?, complete = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := pick(ctx, r.db).ExecContext(ctx, query,
		item.Authorization,
		item.AmountPaid.String(),
		item.Complete,
		item.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update authorization", zap.Int64("id", item.ID), zap.Error(err))
		return fmt.Errorf("failed to update authorization: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("line item %d: %w", item.ID, entity.ErrNotFound)
	}
	return nil
}

func scanLineItem(row rowScanner) (*entity.LineItem, error) {
	var item entity.LineItem
	var amountToPay, amountPaid, recordedPayment string
	var conceptID sql.NullInt64

	err := row.Scan(
		&item.ID,
		&item.PackageID,
		&item.Kind,
		&item.Description,
		&amountToPay,
		&amountPaid,
		&recordedPayment,
		&item.PaymentDescription,
		&conceptID,
		&item.Authorization,
		&item.Complete,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.AmountToPay = money.Normalize(amountToPay)
	item.AmountPaid = money.Normalize(amountPaid)
	item.RecordedPayment = money.Normalize(recordedPayment)
	if conceptID.Valid {
		item.ExpenseConceptID = &conceptID.Int64
	}
	return &item, nil
}

// Verify interface compliance
var _ port.LineItemRepository = (*LineItemRepository)(nil)
