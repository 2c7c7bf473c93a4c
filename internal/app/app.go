package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/skillsprint-backend/internal/data/db"
	"github.com/yungbote/skillsprint-backend/internal/http"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
	"github.com/yungbote/skillsprint-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	a := &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		pg:           pg,
		otelShutdown: otelShutdown,
	}

	a.SSEHub = realtime.NewSSEHub(log)
	a.Repos = wireRepos(theDB, log)

	if a.Clients, err = wireClients(ctx, log, cfg, metrics); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if a.Services, err = wireServices(theDB, log, cfg, a.Repos, a.Clients, a.SSEHub, metrics); err != nil {
		a.Close(ctx)
		return nil, err
	}
	handlers, err := wireHandlers(theDB, log, a.Services, a.SSEHub)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Server = wireServer(log, cfg, metrics, handlers, wireMiddleware(log, cfg))
	return a, nil
}

// Start launches the worker pool and the bus forwarder.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start bus forwarder: %w", err)
		}
	}
	if a.Services.Worker != nil {
		if err := a.Services.Worker.Start(ctx); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
		if _, err := a.Services.Worker.RequeuePending(ctx, a.Cfg.RequeuePendingAfter); err != nil {
			a.Log.Warn("Requeue of pending requests failed", "error", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is done, then shuts everything down within the grace period.
func (a *App) Run(ctx context.Context, grace time.Duration) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
		errCh <- a.Server.Run()
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		a.Log.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("HTTP shutdown", "error", err)
	}
	a.Close(shutdownCtx)
	return runErr
}

// Close stops background work. In-flight generations are aborted and their rows stay
// processing.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Services.Worker != nil {
			if err := a.Services.Worker.Wait(); err != nil {
				a.Log.Warn("Worker stopped with error", "error", err)
			}
		}
	}
	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.Close(); err != nil {
			a.Log.Warn("Bus close", "error", err)
		}
		a.Clients.Bus = nil
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Postgres close", "error", err)
		}
		a.pg = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown", "error", err)
		}
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
