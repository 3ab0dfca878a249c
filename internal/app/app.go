package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"storefront/internal/broker"
	kafka_impl "storefront/internal/broker/kafka"
	"storefront/internal/broker/memory"
	"storefront/internal/config"
	"storefront/internal/domain"
	dashboard_h "storefront/internal/http-server/handler/dashboard"
	form_h "storefront/internal/http-server/handler/form"
	header_h "storefront/internal/http-server/handler/header"
	notification_h "storefront/internal/http-server/handler/notification"
	page_h "storefront/internal/http-server/handler/page"
	session_h "storefront/internal/http-server/handler/session"
	"storefront/internal/http-server/router"
	"storefront/internal/repository/blob"
	file_repo "storefront/internal/repository/blob/file"
	minio_repo "storefront/internal/repository/blob/minio"
	postgres_repo "storefront/internal/repository/blob/postgres"
	dashboard_uc "storefront/internal/usecase/dashboard"
	form_uc "storefront/internal/usecase/form"
	header_uc "storefront/internal/usecase/header"
	"storefront/internal/usecase/notify"
	"storefront/internal/usecase/page"
	"storefront/internal/usecase/processor"
	"storefront/internal/usecase/settings"
	"storefront/internal/usecase/submission"
	"storefront/internal/usecase/upload"
	"storefront/internal/worker"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// blobRepository is satisfied by every storage backend.
type blobRepository interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

type messageBroker interface {
	broker.Producer
	broker.Consumer
}

type App struct {
	cfg       *config.Config
	server    *http.Server
	logger    *zlog.Zerolog
	db        *dbpg.DB
	broker    messageBroker
	uploads   *upload.Coordinator
	presenter *notify.Presenter
	worker    *worker.Worker
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	ctx := context.Background()
	retries := cfg.DefaultRetryStrategy()

	a := &App{cfg: cfg, logger: logger}

	blobs, err := a.newBlobRepository(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.UseKafka() {
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.SubmissionsTopic).Msg("Using kafka broker")
		a.broker = kafka_impl.NewKafkaClient(cfg)
	} else {
		logger.Info().Dur("latency", cfg.Forms.SimulatedLatency).Msg("Using in-memory broker")
		a.broker = memory.New(cfg.Kafka.SubmissionsTopic, cfg.Forms.SimulatedLatency, 64)
	}

	a.presenter = notify.NewPresenter(cfg.Notify.TTL, logger)

	imageProcessor := processor.NewImageProcessor(domain.ImageFormat(cfg.Upload.OutputFormat), cfg.Upload.Quality, logger)
	a.uploads = upload.NewCoordinator(imageProcessor, map[domain.Slot]domain.Target{
		domain.SlotBackground: cfg.Target(domain.SlotBackground),
		domain.SlotLogo:       cfg.Target(domain.SlotLogo),
	}, cfg.Upload.MaxConcurrent, logger)

	settingsStore := settings.NewStore(blobs, logger)
	headerService := header_uc.NewService(settingsStore, a.uploads, a.presenter, cfg.SessionLimits(), logger)

	formService := form_uc.NewService(broker.NewSubmissionPublisher(a.broker, retries), a.presenter, logger)
	applier := submission.NewApplier(blobs, a.presenter, logger)
	a.worker = worker.NewWorker(a.broker, applier, cfg.Worker.Concurrency, retries, logger)

	orders := dashboard_uc.NewOrders()
	pages := page.NewRegistry(pageInitializers(orders, headerService, blobs), cfg.SessionLimits(), logger)

	h := &router.Handler{
		SessionHandler:      session_h.NewSessionHandler(blobs, logger),
		PageHandler:         page_h.NewPageHandler(pages, logger),
		HeaderHandler:       header_h.NewHeaderHandler(headerService, cfg.Upload.MaxBodyBytes, logger),
		FormHandler:         form_h.NewFormHandler(formService, logger),
		DashboardHandler:    dashboard_h.NewDashboardHandler(orders, dashboard_uc.Charts, logger),
		NotificationHandler: notification_h.NewNotificationHandler(a.presenter, logger),
	}

	mux := router.SetupRouter(h, cfg.Server.StaticDir, cfg.Server.TemplatesDir)

	a.server = &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func (a *App) newBlobRepository(ctx context.Context) (blobRepository, error) {
	cfg := a.cfg
	retries := cfg.DefaultRetryStrategy()

	switch cfg.Storage.Backend {
	case "minio":
		repo, err := minio_repo.NewMinIORepository(ctx, cfg, retries, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create minio repository: %w", err)
		}
		return repo, nil

	case "postgres":
		dbOpts := &dbpg.Options{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}

		db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db

		repo := postgres_repo.NewBlobRepository(db, int64(cfg.Storage.QuotaBytes), retries)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	default:
		repo, err := file_repo.NewBlobRepository(cfg.Storage.Dir, int64(cfg.Storage.QuotaBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to create file repository: %w", err)
		}
		return repo, nil
	}
}

type headerDraft interface {
	Draft(ctx context.Context, session string) domain.HeaderSettings
}

func pageInitializers(orders *dashboard_uc.Orders, header headerDraft, blobs blobRepository) map[domain.PageID]page.Initializer {
	return map[domain.PageID]page.Initializer{
		domain.PageDashboard: func(ctx context.Context, session string) (any, error) {
			return orders.Summary(), nil
		},
		domain.PageOrders: func(ctx context.Context, session string) (any, error) {
			return orders.List(domain.OrderFilter{Status: "all"})
		},
		domain.PageReports: func(ctx context.Context, session string) (any, error) {
			return dashboard_uc.Charts(), nil
		},
		domain.PageSettings: func(ctx context.Context, session string) (any, error) {
			draft := header.Draft(ctx, session)
			return map[string]any{
				"settings": draft,
				"preview":  header_uc.Preview(draft),
			}, nil
		},
		domain.PageProfile: func(ctx context.Context, session string) (any, error) {
			raw, err := blobs.Get(ctx, session, domain.KeyCurrentUser)
			if errors.Is(err, blob.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			var user domain.CurrentUser
			if err := json.Unmarshal(raw, &user); err != nil {
				return nil, fmt.Errorf("failed to decode current user: %w", err)
			}
			return user, nil
		},
	}
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.presenter.Run(ctx, a.cfg.Notify.SweepInterval)
	}()
	go func() {
		defer wg.Done()
		a.uploads.Run(ctx, a.cfg.Sessions.SweepInterval, a.cfg.Sessions.IdleTTL)
	}()

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		runErr = err
		cancel()
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}

	a.uploads.Close()
	wg.Wait()

	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close broker")
		}
	}

	if a.db != nil && a.db.Master != nil {
		a.db.Master.Close()
	}

	if runErr == nil {
		a.logger.Info().Msg("Server stopped gracefully")
	}
	return runErr
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
