package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/ai"
	httptransport "github.com/spec-kit/helpdesk-core/internal/api/http"
	"github.com/spec-kit/helpdesk-core/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-core/internal/automation"
	"github.com/spec-kit/helpdesk-core/internal/config"
	"github.com/spec-kit/helpdesk-core/internal/events"
	"github.com/spec-kit/helpdesk-core/internal/ingestion"
	"github.com/spec-kit/helpdesk-core/internal/mailbox"
	"github.com/spec-kit/helpdesk-core/internal/observability"
	"github.com/spec-kit/helpdesk-core/internal/persistence"
	"github.com/spec-kit/helpdesk-core/internal/repository"
	"github.com/spec-kit/helpdesk-core/internal/service"
	"github.com/spec-kit/helpdesk-core/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	automationRepo := repository.NewAutomationRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	accountRepo := repository.NewMailAccountRepository(pool)
	counterRepo := repository.NewRedisCounterRepository(redis.Client)

	metrics := observability.NewMetrics()
	audit := activity.NewLogger(activityRepo, logger)
	dispatcher := events.NewInMemoryDispatcher()

	mailer := service.NewSMTPMailer(cfg.SMTP)
	notifications := service.NewNotificationService(mailer, contactRepo, dispatcher, logger)
	worker.StartNotificationWorker(notifications)

	var assist ai.Adapter
	if cfg.AI.BaseURL != "" {
		assist = ai.HTTPAdapter{
			BaseURL: cfg.AI.BaseURL,
			Client:  &http.Client{Timeout: cfg.AI.Timeout()},
		}
	}

	executor := automation.NewExecutor(automation.ExecutorDependencies{
		Tickets:  ticketRepo,
		Messages: messageRepo,
		Tags:     tagRepo,
		Agents:   agentRepo,
		Groups:   groupRepo,
		Notifier: notifications,
		Assist:   assist,
		Audit:    audit,
		Logger:   logger,
	})
	engine := automation.NewEngine(automationRepo, ticketRepo,
		automation.NewEvaluator(logger), executor, audit, metrics, logger)

	allocator := service.NewNumberAllocator(counterRepo, ticketRepo)
	reader := mailbox.NewReader(audit, logger, cfg.Mailbox.DialTimeout(), cfg.Mailbox.CommandTimeout())

	coordinator := ingestion.NewCoordinator(ingestion.CoordinatorDependencies{
		Accounts:       accountRepo,
		Source:         reader,
		Tickets:        ticketRepo,
		Contacts:       contactRepo,
		Messages:       messageRepo,
		Allocator:      allocator,
		Engine:         engine,
		Dispatch:       dispatcher,
		Audit:          audit,
		Metrics:        metrics,
		Logger:         logger,
		AccountTimeout: cfg.Mailbox.AccountTimeout(),
	})

	if cfg.Mailbox.WorkerEnabled {
		ingestionWorker := worker.NewIngestionWorker(coordinator, cfg.Mailbox.PollInterval(), logger)
		ingestionWorker.Start(ctx)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Metrics:   handlers.NewMetricsHandler(metrics),
		Tickets:   handlers.NewTicketsHandler(ticketRepo),
		Ingestion: handlers.NewIngestionHandler(coordinator),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	notifications.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
