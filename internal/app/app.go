package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"eventsapi/config"
	"eventsapi/internal/adapters/storage"
	deliveryhttp "eventsapi/internal/delivery/http"
	"eventsapi/internal/delivery/http/controllers"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"
	"eventsapi/internal/repository/mongodb"
	"eventsapi/internal/repository/postgres"
	"eventsapi/internal/services"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

type App struct {
	cfg        *config.Config
	log        *slog.Logger
	httpServer *http.Server
	closeStore func(context.Context) error
}

// New connects the configured store and file storage and builds the HTTP server.
// A store that cannot be reached is an error; the caller is expected to exit.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	repo, err := a.initStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	files, err := newFileStorage(ctx, cfg)
	if err != nil {
		_ = a.closeStore(context.Background())
		return nil, fmt.Errorf("init file storage: %w", err)
	}

	svc := services.NewEventService(repo, files, log, cfg.RequestTimeout)
	a.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newHandler(cfg, log, svc),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

func (a *App) initStore(ctx context.Context) (domain.EventRepository, error) {
	switch a.cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, a.cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.closeStore = func(context.Context) error { return db.Close() }
		a.log.InfoContext(ctx, "database connected", "driver", a.cfg.StoreDriver)
		return postgres.NewEventRepository(db), nil
	default:
		client, err := mongodb.Connect(ctx, a.cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(a.cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		a.closeStore = client.Disconnect
		a.log.InfoContext(ctx, "database connected", "driver", a.cfg.StoreDriver, "database", a.cfg.MongoDatabase)
		return mongodb.NewEventRepository(db), nil
	}
}

func newFileStorage(ctx context.Context, cfg *config.Config) (domain.FileStorage, error) {
	if cfg.UploadBackend == config.UploadMinio {
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	}
	return storage.NewDiskStorage(cfg.UploadDir)
}

func newHandler(cfg *config.Config, log *slog.Logger, svc domain.EventService) http.Handler {
	ec := controllers.NewEventController(log, svc, cfg.MaxMultipartMemory)
	return middleware.Chain(deliveryhttp.NewRouter(ec),
		middleware.RequestID,
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoContext(ctx, "HTTP server starting", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.closeStore(context.Background())
		return err
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.log.Info("HTTP server stopped")

	if err := a.closeStore(ctx); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	a.log.Info("store connection closed")
	return nil
}
