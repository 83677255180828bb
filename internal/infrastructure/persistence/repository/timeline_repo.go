package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// TimelineRepository implements port.TimelineSink over sqlite. Appends are
// best-effort from the caller's point of view: services log a failed append
// and move on.
type TimelineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTimelineRepository creates a new timeline repository
func NewTimelineRepository(db *sql.DB, logger *zap.Logger) port.TimelineSink {
	return &TimelineRepository{db: db, logger: logger}
}

// Append records a package status change
func (r *TimelineRepository) Append(ctx context.Context, packageID int64, status, note string) error {
	query := "INSERT INTO timeline_entries (id, package_id, status, note) VALUES (?, ?, ?, ?)"

	_, err := pick(ctx, r.db).ExecContext(ctx, query, uuid.NewString(), packageID, status, note)
	if err != nil {
		r.logger.Error("Failed to append timeline entry",
			zap.Int64("package_id", packageID), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}
	return nil
}

// ListByPackageID returns the package's timeline, oldest first
func (r *TimelineRepository) ListByPackageID(ctx context.Context, packageID int64) ([]*entity.TimelineEntry, error) {
	query := `SELECT id, package_id, status, note, created_at
		FROM timeline_entries
		WHERE package_id = ?
		ORDER BY created_at, id`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, packageID)
	if err != nil {
		r.logger.Error("Failed to list timeline entries", zap.Int64("package_id", packageID), zap.Error(err))
		return nil, fmt.Errorf("failed to list timeline entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.TimelineEntry
	for rows.Next() {
		var e entity.TimelineEntry
		if err := rows.Scan(&e.ID, &e.PackageID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Verify interface compliance
var _ port.TimelineSink = (*TimelineRepository)(nil)
