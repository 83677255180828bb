package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/domain/budget"
	"github.com/finadmin/tesoreria/internal/domain/entity"
	"github.com/finadmin/tesoreria/internal/domain/workflow"
)

// PackageDetail bundles a package with its items and governing folio for the
// admin UI.
type PackageDetail struct {
	Package     *entity.Package            `json:"package"`
	Items       []*entity.LineItem         `json:"items"`
	LatestFolio *entity.AuthorizationFolio `json:"latest_folio,omitempty"`
}

// PackageService drives the package lifecycle. Every forward transition is
// gated here: the budget verdict is recomputed immediately before gating and
// never cached across a transition boundary.
type PackageService interface {
	Get(ctx context.Context, id int64) (*PackageDetail, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Package, error)

	// ListCompanies returns the paying companies a schedule selection can
	// draw from.
	ListCompanies(ctx context.Context) ([]*entity.Company, error)

	// ComputeVerdict recomputes the budget exceedance verdict on demand.
	ComputeVerdict(ctx context.Context, packageID int64) (budget.Verdict, error)

	// RequestFolio computes a fresh verdict and issues an override folio for
	// a blocked Borrador package.
	RequestFolio(ctx context.Context, packageID int64, requesterID string) (*entity.AuthorizationFolio, error)

	// SendToTreasury attempts Borrador -> Enviado. folioCode is required only
	// when a pending/authorized folio exists for the package.
	SendToTreasury(ctx context.Context, packageID int64, folioCode string) (*entity.Package, error)

	// SchedulePayment attempts Enviado -> Programado with a resolved company
	// and bank account selection. Budget is not re-checked here.
	SchedulePayment(ctx context.Context, packageID, companyID, bankAccountID int64) (*entity.Package, error)

	// Administrative transitions past Programado; their triggering services
	// are external collaborators, recorded here for completeness.
	GeneratePayments(ctx context.Context, packageID int64) (*entity.Package, error)
	SendToFunding(ctx context.Context, packageID int64) (*entity.Package, error)
	Fund(ctx context.Context, packageID int64) (*entity.Package, error)
	MarkPaid(ctx context.Context, packageID int64) (*entity.Package, error)

	// Deactivate soft-deletes a package; blocked while Generado/Programado.
	Deactivate(ctx context.Context, packageID int64) error

	Timeline(ctx context.Context, packageID int64) ([]*entity.TimelineEntry, error)
}

type packageServiceImpl struct {
	packageRepo  port.PackageRepository
	lineItemRepo port.LineItemRepository
	budgetDir    port.BudgetDirectory
	conceptDir   port.ConceptDirectory
	companyDir   port.CompanyDirectory
	timeline     port.TimelineSink
	folios       FolioService
	txManager    port.TransactionManager
	locks        *PackageLocks
	logger       Logger
}

// NewPackageService creates a new PackageService
func NewPackageService(
	packageRepo port.PackageRepository,
	lineItemRepo port.LineItemRepository,
	budgetDir port.BudgetDirectory,
	conceptDir port.ConceptDirectory,
	companyDir port.CompanyDirectory,
	timeline port.TimelineSink,
	folios FolioService,
	txManager port.TransactionManager,
	locks *PackageLocks,
	logger Logger,
) PackageService {
	return &packageServiceImpl{
		packageRepo:  packageRepo,
		lineItemRepo: lineItemRepo,
		budgetDir:    budgetDir,
		conceptDir:   conceptDir,
		companyDir:   companyDir,
		timeline:     timeline,
		folios:       folios,
		txManager:    txManager,
		locks:        locks,
		logger:       logger,
	}
}

// Get returns the package with its items and governing folio
func (s *packageServiceImpl) Get(ctx context.Context, id int64) (*PackageDetail, error) {
	pkg, err := s.getPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.lineItemRepo.GetByPackageID(ctx, id)
	if err != nil {
		return nil, err
	}

	latest, err := s.folios.LatestForPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PackageDetail{Package: pkg, Items: items, LatestFolio: latest}, nil
}

// List returns packages ordered by creation, newest first
func (s *packageServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.Package, error) {
	return s.packageRepo.List(ctx, limit, offset)
}

// ListCompanies returns the directory of paying companies
func (s *packageServiceImpl) ListCompanies(ctx context.Context) ([]*entity.Company, error) {
	return s.companyDir.ListCompanies(ctx)
}

// ComputeVerdict recomputes the exceedance verdict for the package
func (s *packageServiceImpl) ComputeVerdict(ctx context.Context, packageID int64) (budget.Verdict, error) {
	pkg, err := s.getPackage(ctx, packageID)
	if err != nil {
		return budget.Verdict{}, err
	}
	return s.verdictFor(ctx, pkg)
}

// RequestFolio issues an override folio for a blocked package
func (s *packageServiceImpl) RequestFolio(ctx context.Context, packageID int64, requesterID string) (*entity.AuthorizationFolio, error) {
	unlock := s.locks.Lock(packageID)
	defer unlock()

	var folio *entity.AuthorizationFolio
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		pkg, err := s.getPackage(txCtx, packageID)
		if err != nil {
			return err
		}

		verdict, err := s.verdictFor(txCtx, pkg)
		if err != nil {
			return err
		}

		folio, err = s.folios.Issue(txCtx, pkg, requesterID, verdict)
		return err
	})
	if err != nil {
		return nil, err
	}
	return folio, nil
}

// SendToTreasury attempts the guarded Borrador -> Enviado transition
func (s *packageServiceImpl) SendToTreasury(ctx context.Context, packageID int64, folioCode string) (*entity.Package, error) {
	unlock := s.locks.Lock(packageID)
	defer unlock()

	var result *entity.Package
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		pkg, err := s.getPackage(txCtx, packageID)
		if err != nil {
			return err
		}

		items, err := s.lineItemRepo.GetByPackageID(txCtx, packageID)
		if err != nil {
			return err
		}

		guard := func(gctx context.Context) error {
			verdict, err := s.verdictForItems(gctx, pkg, items)
			if err != nil {
				return err
			}
			if !verdict.RequiresAuthorization {
				return nil
			}

			latest, err := s.folios.LatestForPackage(gctx, packageID)
			if err != nil {
				return err
			}
			switch {
			case latest == nil:
				return &budget.ExceededError{Verdict: verdict}
			case latest.Status == entity.FolioRechazado:
				return fmt.Errorf("package %d: %w", packageID, entity.ErrFolioRejected)
			}

			// A pending or authorized folio exists: the caller must present
			// its code, which is validated and redeemed before the status
			// commit so a failed transition leaves it retryable.
			if folioCode == "" {
				return entity.ErrFolioRequired
			}
			folio, err := s.folios.Validate(gctx, folioCode, packageID)
			if err != nil {
				return err
			}
			return s.folios.Redeem(gctx, folio.ID)
		}

		machine := workflow.NewPackageMachine(workflow.State(pkg.Status), workflow.Guards{Enviar: guard})
		if err := machine.Fire(txCtx, workflow.TriggerEnviar); err != nil {
			return translateMachineErr(err, pkg)
		}

		// Freeze the ledger totals as of the send.
		totalToPay, totalPaid := LedgerTotals(items)
		if err := s.packageRepo.UpdateTotals(txCtx, packageID, totalToPay, totalPaid); err != nil {
			return fmt.Errorf("freeze totals: %w", err)
		}
		if err := s.packageRepo.UpdateStatus(txCtx, packageID, entity.StatusEnviado); err != nil {
			return fmt.Errorf("commit status: %w", err)
		}

		pkg.Status = entity.StatusEnviado
		pkg.TotalToPay = totalToPay
		pkg.TotalPaid = totalPaid
		result = pkg
		return nil
	})
	if err != nil {
		s.logger.Error("Send to treasury failed", "error", err, "package_id", packageID)
		return nil, err
	}

	s.appendTimeline(ctx, packageID, entity.StatusEnviado, "sent to treasury")
	s.logger.Info("Package sent to treasury", "package_id", packageID)
	return result, nil
}

// SchedulePayment attempts the Enviado -> Programado transition
func (s *packageServiceImpl) SchedulePayment(ctx context.Context, packageID, companyID, bankAccountID int64) (*entity.Package, error) {
	unlock := s.locks.Lock(packageID)
	defer unlock()

	var result *entity.Package
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		pkg, err := s.getPackage(txCtx, packageID)
		if err != nil {
			return err
		}

		guard := func(gctx context.Context) error {
			if companyID == 0 || bankAccountID == 0 {
				return entity.ErrBankSelectionMissing
			}
			accounts, err := s.companyDir.ListBankAccounts(gctx, companyID)
			if err != nil {
				return fmt.Errorf("list bank accounts: %w", err)
			}
			for _, acc := range accounts {
				if acc.ID == bankAccountID {
					return nil
				}
			}
			return fmt.Errorf("bank account %d not found for company %d: %w", bankAccountID, companyID, entity.ErrBankSelectionMissing)
		}

		machine := workflow.NewPackageMachine(workflow.State(pkg.Status), workflow.Guards{Programar: guard})
		if err := machine.Fire(txCtx, workflow.TriggerProgramar); err != nil {
			return translateMachineErr(err, pkg)
		}

		if err := s.packageRepo.UpdateSchedule(txCtx, packageID, companyID, bankAccountID); err != nil {
			return fmt.Errorf("record schedule: %w", err)
		}
		if err := s.packageRepo.UpdateStatus(txCtx, packageID, entity.StatusProgramado); err != nil {
			return fmt.Errorf("commit status: %w", err)
		}

		pkg.Status = entity.StatusProgramado
		pkg.ScheduledCompanyID = companyID
		pkg.ScheduledBankAccountID = bankAccountID
		result = pkg
		return nil
	})
	if err != nil {
		s.logger.Error("Schedule payment failed", "error", err, "package_id", packageID)
		return nil, err
	}

	s.appendTimeline(ctx, packageID, entity.StatusProgramado, "payment scheduled")
	s.logger.Info("Package payment scheduled",
		"package_id", packageID, "company_id", companyID, "bank_account_id", bankAccountID)
	return result, nil
}

// GeneratePayments records the Programado -> Generado administrative transition
func (s *packageServiceImpl) GeneratePayments(ctx context.Context, packageID int64) (*entity.Package, error) {
	return s.advance(ctx, packageID, workflow.TriggerGenerar, entity.StatusGenerado, "payment orders generated")
}

// SendToFunding records the Programado -> PorFondear administrative transition
func (s *packageServiceImpl) SendToFunding(ctx context.Context, packageID int64) (*entity.Package, error) {
	return s.advance(ctx, packageID, workflow.TriggerMandarFondeo, entity.StatusPorFondear, "routed to funding")
}

// Fund records the {Generado|PorFondear} -> Fondeado administrative transition
func (s *packageServiceImpl) Fund(ctx context.Context, packageID int64) (*entity.Package, error) {
	return s.advance(ctx, packageID, workflow.TriggerFondear, entity.StatusFondeado, "funds deposited")
}

// MarkPaid records the Fondeado -> Pagado administrative transition
func (s *packageServiceImpl) MarkPaid(ctx context.Context, packageID int64) (*entity.Package, error) {
	return s.advance(ctx, packageID, workflow.TriggerPagar, entity.StatusPagado, "payments executed")
}

// Deactivate soft-deletes the package when its status allows it
func (s *packageServiceImpl) Deactivate(ctx context.Context, packageID int64) error {
	unlock := s.locks.Lock(packageID)
	defer unlock()

	pkg, err := s.getPackage(ctx, packageID)
	if err != nil {
		return err
	}
	if pkg.DeactivationBlocked() {
		return fmt.Errorf("package %d in status %s: %w", packageID, pkg.Status, entity.ErrDeactivationBlocked)
	}

	if err := s.packageRepo.SetActive(ctx, packageID, false); err != nil {
		return fmt.Errorf("deactivate package: %w", err)
	}

	s.logger.Info("Package deactivated", "package_id", packageID)
	return nil
}

// Timeline returns the package's recorded status changes
func (s *packageServiceImpl) Timeline(ctx context.Context, packageID int64) ([]*entity.TimelineEntry, error) {
	if _, err := s.getPackage(ctx, packageID); err != nil {
		return nil, err
	}
	return s.timeline.ListByPackageID(ctx, packageID)
}

func (s *packageServiceImpl) advance(ctx context.Context, packageID int64, trigger workflow.Trigger, toStatus, note string) (*entity.Package, error) {
	unlock := s.locks.Lock(packageID)
	defer unlock()

	var result *entity.Package
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		pkg, err := s.getPackage(txCtx, packageID)
		if err != nil {
			return err
		}

		machine := workflow.NewPackageMachine(workflow.State(pkg.Status), workflow.Guards{})
		if err := machine.Fire(txCtx, trigger); err != nil {
			return translateMachineErr(err, pkg)
		}

		if err := s.packageRepo.UpdateStatus(txCtx, packageID, toStatus); err != nil {
			return fmt.Errorf("commit status: %w", err)
		}

		pkg.Status = toStatus
		result = pkg
		return nil
	})
	if err != nil {
		s.logger.Error("Transition failed", "error", err, "package_id", packageID, "trigger", trigger.String())
		return nil, err
	}

	s.appendTimeline(ctx, packageID, toStatus, note)
	s.logger.Info("Package transitioned", "package_id", packageID, "status", toStatus)
	return result, nil
}

func (s *packageServiceImpl) getPackage(ctx context.Context, id int64) (*entity.Package, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %d: %w", id, entity.ErrNotFound)
	}
	return pkg, nil
}

// verdictFor loads the package's items and delegates to verdictForItems.
func (s *packageServiceImpl) verdictFor(ctx context.Context, pkg *entity.Package) (budget.Verdict, error) {
	items, err := s.lineItemRepo.GetByPackageID(ctx, pkg.ID)
	if err != nil {
		return budget.Verdict{}, err
	}
	return s.verdictForItems(ctx, pkg, items)
}

// verdictForItems resolves the budget scope for the payment date's month and
// computes the verdict.
func (s *packageServiceImpl) verdictForItems(ctx context.Context, pkg *entity.Package, items []*entity.LineItem) (budget.Verdict, error) {
	if pkg.PaymentDate.IsZero() {
		return budget.Verdict{}, fmt.Errorf("package %d: %w", pkg.ID, entity.ErrPaymentDateMissing)
	}

	budgets, err := s.budgetDir.ListBudgets(ctx, pkg.CompanyID, pkg.BrandID, pkg.BranchID, entity.BudgetMonth(pkg.PaymentDate))
	if err != nil {
		return budget.Verdict{}, fmt.Errorf("list budgets: %w", err)
	}

	names, err := s.conceptNames(ctx)
	if err != nil {
		return budget.Verdict{}, err
	}

	return budget.ComputeVerdict(items, budgets, names), nil
}

func (s *packageServiceImpl) conceptNames(ctx context.Context) (map[int64]string, error) {
	concepts, err := s.conceptDir.ListConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	names := make(map[int64]string, len(concepts))
	for _, c := range concepts {
		names[c.ID] = c.Name
	}
	return names, nil
}

// appendTimeline records the status change without ever blocking the caller.
func (s *packageServiceImpl) appendTimeline(ctx context.Context, packageID int64, status, note string) {
	if err := s.timeline.Append(ctx, packageID, status, note); err != nil {
		s.logger.Error("Failed to append timeline entry",
			"error", err, "package_id", packageID, "status", status)
	}
}

// translateMachineErr maps a bare transition rejection onto the caller-facing
// taxonomy; guard errors pass through untouched.
func translateMachineErr(err error, pkg *entity.Package) error {
	if errors.Is(err, workflow.ErrInvalidTransition) {
		return fmt.Errorf("%w: package %d is in status %s", entity.ErrInvalidState, pkg.ID, pkg.Status)
	}
	return err
}
