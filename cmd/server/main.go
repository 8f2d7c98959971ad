package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/dispatcher"
	"github.com/ordem-digital/protocol-engine/internal/application/handler"
	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/application/service"
	appworkflow "github.com/ordem-digital/protocol-engine/internal/application/workflow"
	"github.com/ordem-digital/protocol-engine/internal/config"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/notification"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/repository"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/persistence/sqlite"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/receipt"
	"github.com/ordem-digital/protocol-engine/internal/infrastructure/storage"
	httpiface "github.com/ordem-digital/protocol-engine/internal/interfaces/http"
	"github.com/ordem-digital/protocol-engine/internal/metrics"
	"github.com/ordem-digital/protocol-engine/pkg/database"
	"github.com/ordem-digital/protocol-engine/pkg/utils"
)

func main() {
	// Local overrides from .env, ignored when absent
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting Protocol Workflow Engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database and migrations
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

	txManager := sqlite.NewDB(db.DB, logger)

	// Repositories
	protocolRepo := repository.NewProtocolRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	memberRepo := repository.NewMemberRepository(db.DB, logger)
	accountRepo := repository.NewAccountRepository(db.DB, logger)
	assemblyRepo := repository.NewAssemblyRepository(db.DB, logger)
	positionRepo := repository.NewPositionRepository(db.DB, logger)
	honorRepo := repository.NewHonorRepository(db.DB, logger)

	// Event dispatcher
	eventDispatcher := dispatcher.New(logger)
	defer eventDispatcher.Close()

	// Domain services
	initiationService := service.NewInitiationService(memberRepo, accountRepo, assemblyRepo, historyRepo, logger)
	majorityService := service.NewMajorityService(memberRepo, accountRepo, logger)
	removalService := service.NewRemovalService(memberRepo, positionRepo, logger)
	assemblyPositions := service.NewAssemblyPositionService(memberRepo, positionRepo, logger)
	councilPositions := service.NewCouncilPositionService(memberRepo, positionRepo, accountRepo, logger)
	honorService := service.NewHonorService(honorRepo, memberRepo, logger)
	reportService := service.NewReportService(memberRepo, protocolRepo, assemblyRepo, logger)

	// Receipt handling
	receiptStore := storage.NewReceiptStore(cfg.Storage.ReceiptDir, logger)

	// Step action handlers
	receiptInspector := receipt.NewInspector(logger)
	handlers := handler.NewSet(
		handler.NewAssemblyAdminHandler(receiptInspector, logger),
		handler.NewJurisdictionMemberHandler(initiationService, majorityService, removalService,
			assemblyPositions, councilPositions, honorService, logger),
		handler.NewHonorsPresidentHandler(honorService, logger),
	)

	// Metrics
	registerer := prometheus.NewRegistry()
	registerer.MustRegister(collectors.NewGoCollector())
	registerer.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := metrics.New(registerer)

	// Workflow engine
	registry := appworkflow.BuildRegistry()
	engine := appworkflow.NewEngine(registry, handlers, protocolRepo, historyRepo,
		txManager, eventDispatcher, engineMetrics, logger)

	// Event subscriptions
	if cfg.Notification.Enabled {
		notifier := notification.NewSMTPNotifier(notification.Config{
			Host:     cfg.Notification.SMTPHost,
			Port:     cfg.Notification.SMTPPort,
			Username: cfg.Notification.Username,
			Password: cfg.Notification.Password,
			From:     cfg.Notification.From,
		}, logger)
		subscribeCredentialNotifier(eventDispatcher, notifier)
	}
	eventDispatcher.Subscribe(event.TypeStatusChanged, "audit-log", func(ctx context.Context, evt *event.Event) error {
		logger.Info("Protocol status changed",
			zap.Int64("protocol_id", evt.ProtocolID),
			zap.String("new_step", evt.PayloadString("new_step")),
			zap.String("status", evt.PayloadString("status")))
		return nil
	})

	// HTTP server
	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, registry, protocolRepo, accountRepo, memberRepo, reportService, receiptStore, registerer, sugaredLogger{logger.Sugar()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// sugaredLogger adapts zap's sugared logger to the HTTP layer's logging
// interface
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

// subscribeCredentialNotifier delivers first-access credentials whenever an
// initiation creates a member account
func subscribeCredentialNotifier(d dispatcher.Dispatcher, notifier port.CredentialNotifier) {
	d.Subscribe(event.TypeCredentialIssued, "credential-notifier", func(ctx context.Context, evt *event.Event) error {
		return notifier.SendFirstAccess(ctx, port.Credential{
			Name:         evt.PayloadString("name"),
			Email:        evt.PayloadString("email"),
			MemberNumber: evt.PayloadString("member_number"),
			TempPassword: evt.PayloadString("temp_password"),
		})
	})
}
