package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/finadmin/tesoreria/internal/application/port"
	"github.com/finadmin/tesoreria/internal/application/service"
	"github.com/finadmin/tesoreria/internal/config"
	httpiface "github.com/finadmin/tesoreria/internal/interfaces/http"
	"github.com/finadmin/tesoreria/internal/notification"
	"github.com/finadmin/tesoreria/pkg/database"
	"github.com/finadmin/tesoreria/pkg/utils"

	persistence "github.com/finadmin/tesoreria/internal/infrastructure/persistence/repository"
	"github.com/finadmin/tesoreria/internal/infrastructure/persistence/sqlite"
)

func main() {
	// Local overrides for development; absence is fine
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting treasury gate service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	packageRepo := persistence.NewPackageRepository(db.DB, logger)
	lineItemRepo := persistence.NewLineItemRepository(db.DB, logger)
	folioRepo := persistence.NewFolioRepository(db.DB, logger)
	budgetRepo := persistence.NewBudgetRepository(db.DB, logger)
	companyDir := persistence.NewCompanyRepository(db.DB, logger)
	timelineSink := persistence.NewTimelineRepository(db.DB, logger)

	// Approver notification channel
	var notifier port.ApproverNotifier = notification.NopNotifier{}
	if cfg.Notifier.Enabled() {
		notifier = notification.NewEmailNotifier(
			cfg.Notifier.SMTPHost,
			cfg.Notifier.SMTPPort,
			cfg.Notifier.SMTPUser,
			cfg.Notifier.SMTPPassword,
			cfg.Notifier.SenderName,
			cfg.Notifier.SenderEmail,
			cfg.Notifier.ApproverEmail,
			logger,
		)
	}

	// Application services
	kvLogger := utils.NewKVLogger(logger)
	locks := service.NewPackageLocks()
	folioService := service.NewFolioService(folioRepo, notifier, kvLogger)
	ledgerService := service.NewLedgerService(packageRepo, lineItemRepo, txManager, locks, kvLogger)
	packageService := service.NewPackageService(
		packageRepo,
		lineItemRepo,
		budgetRepo,
		budgetRepo,
		companyDir,
		timelineSink,
		folioService,
		txManager,
		locks,
		kvLogger,
	)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, packageService, ledgerService, folioService, kvLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
