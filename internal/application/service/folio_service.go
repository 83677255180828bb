package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/budget"
	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// FolioService issues, validates, resolves, and redeems the override
// credentials that let a budget-exceeding package advance to treasury.
type FolioService interface {
	// Issue creates a pendiente folio for a Borrador package whose verdict
	// shows exceedance. At most one non-terminal folio may exist per package.
	Issue(ctx context.Context, pkg *entity.Package, requesterID string, verdict budget.Verdict) (*entity.AuthorizationFolio, error)

	// Validate checks that the code matches an autorizado folio belonging to
	// the given package and returns it for redemption.
	Validate(ctx context.Context, code string, packageID int64) (*entity.AuthorizationFolio, error)

	// Redeem consumes the folio exactly once. A second call fails with
	// ErrAlreadyRedeemed.
	Redeem(ctx context.Context, folioID int64) error

	// Resolve records the external approver's decision on a pendiente folio.
	Resolve(ctx context.Context, code string, approved bool) (*entity.AuthorizationFolio, error)

	// LatestForPackage returns the most-recently-created folio, or nil. It
	// governs the pending/authorized/rejected banner; older folios are
	// informational history.
	LatestForPackage(ctx context.Context, packageID int64) (*entity.AuthorizationFolio, error)

	// HistoryForPackage returns every folio ever issued for the package,
	// newest first.
	HistoryForPackage(ctx context.Context, packageID int64) ([]*entity.AuthorizationFolio, error)
}

type folioServiceImpl struct {
	folioRepo port.FolioRepository
	notifier  port.ApproverNotifier
	logger    Logger
	now       func() time.Time
}

// NewFolioService creates a new FolioService. notifier may be nil when no
// approver channel is configured.
func NewFolioService(folioRepo port.FolioRepository, notifier port.ApproverNotifier, logger Logger) FolioService {
	return &folioServiceImpl{
		folioRepo: folioRepo,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateFolioCode derives the globally unique folio code from the package
// folio number and the issue timestamp.
func GenerateFolioCode(packageFolioNumber int64, issuedAt time.Time) string {
	return fmt.Sprintf("FA-%d-%s", packageFolioNumber, issuedAt.Format("20060102150405"))
}

// Issue creates a pendiente folio for the package
func (s *folioServiceImpl) Issue(ctx context.Context, pkg *entity.Package, requesterID string, verdict budget.Verdict) (*entity.AuthorizationFolio, error) {
	if !pkg.InBorrador() {
		return nil, fmt.Errorf("%w: folio can only be requested for a Borrador package, status is %s", entity.ErrInvalidState, pkg.Status)
	}
	if !verdict.RequiresAuthorization {
		return nil, fmt.Errorf("%w: package spend does not exceed its budget", entity.ErrInvalidState)
	}

	open, err := s.folioRepo.HasOpenFolio(ctx, pkg.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("%w: a pending folio already exists for package %d", entity.ErrInvalidState, pkg.ID)
	}

	issuedAt := s.now()
	folio := &entity.AuthorizationFolio{
		Code:        GenerateFolioCode(pkg.FolioNumber, issuedAt),
		PackageID:   pkg.ID,
		Status:      entity.FolioPendiente,
		Reason:      verdict.Reason(),
		RequestedBy: requesterID,
		CreatedAt:   issuedAt,
	}

	if err := s.folioRepo.Create(ctx, folio); err != nil {
		s.logger.Error("Failed to create folio", "error", err, "package_id", pkg.ID)
		return nil, fmt.Errorf("create folio: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyFolioRequested(ctx, folio, pkg); err != nil {
			s.logger.Error("Failed to notify approver", "error", err, "folio_code", folio.Code)
		}
	}

	s.logger.Info("Authorization folio issued",
		"folio_code", folio.Code, "package_id", pkg.ID, "requested_by", requesterID)
	return folio, nil
}

// Validate returns the folio matching code when it is redeemable for the package
func (s *folioServiceImpl) Validate(ctx context.Context, code string, packageID int64) (*entity.AuthorizationFolio, error) {
	folio, err := s.folioRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if folio == nil {
		return nil, fmt.Errorf("folio %q: %w", code, entity.ErrNotFound)
	}
	if folio.PackageID != packageID {
		return nil, fmt.Errorf("folio %q: %w", code, entity.ErrFolioMismatch)
	}
	if folio.Status != entity.FolioAutorizado {
		return nil, fmt.Errorf("folio %q is %s: %w", code, folio.Status, entity.ErrFolioNotAuthorized)
	}
	return folio, nil
}

// Redeem consumes the folio; only the first call succeeds
func (s *folioServiceImpl) Redeem(ctx context.Context, folioID int64) error {
	ok, err := s.folioRepo.MarkRedeemed(ctx, folioID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("folio %d: %w", folioID, entity.ErrAlreadyRedeemed)
	}
	s.logger.Info("Authorization folio redeemed", "folio_id", folioID)
	return nil
}

// Resolve records the approver's decision
func (s *folioServiceImpl) Resolve(ctx context.Context, code string, approved bool) (*entity.AuthorizationFolio, error) {
	folio, err := s.folioRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if folio == nil {
		return nil, fmt.Errorf("folio %q: %w", code, entity.ErrNotFound)
	}
	if folio.Terminal() {
		return nil, fmt.Errorf("%w: folio %q is already %s", entity.ErrInvalidState, code, folio.Status)
	}

	status := entity.FolioRechazado
	if approved {
		status = entity.FolioAutorizado
	}
	if err := s.folioRepo.UpdateStatus(ctx, folio.ID, status); err != nil {
		return nil, fmt.Errorf("resolve folio: %w", err)
	}

	folio.Status = status
	resolvedAt := s.now()
	folio.ResolvedAt = &resolvedAt

	s.logger.Info("Authorization folio resolved", "folio_code", code, "status", status)
	return folio, nil
}

// LatestForPackage returns the governing folio for the package, or nil
func (s *folioServiceImpl) LatestForPackage(ctx context.Context, packageID int64) (*entity.AuthorizationFolio, error) {
	return s.folioRepo.GetLatestByPackageID(ctx, packageID)
}

// HistoryForPackage returns all folios for the package, newest first
func (s *folioServiceImpl) HistoryForPackage(ctx context.Context, packageID int64) ([]*entity.AuthorizationFolio, error) {
	return s.folioRepo.ListByPackageID(ctx, packageID)
}
