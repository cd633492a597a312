package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/voicewatch-backend/internal/config"
	"github.com/yungbote/voicewatch-backend/internal/data/db"
	apphttp "github.com/yungbote/voicewatch-backend/internal/http"
	"github.com/yungbote/voicewatch-backend/internal/mcp"
	"github.com/yungbote/voicewatch-backend/internal/observability"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	DB       *db.Service
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *apphttp.Server
	MCP      *mcp.Server
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

// New validates cfg and wires every dependency. Nothing listens until Run.
func New(ctx context.Context, log *logger.Logger, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metrics := observability.Init(log, cfg.Metrics.Enabled)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: apphttp.ServiceName,
		Environment: cfg.Telemetry.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Headers:     cfg.Telemetry.Headers,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})

	log.Info("Opening database...", "driver", cfg.DB.Driver)
	dbs, err := db.NewService(log, db.Config{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN})
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}

	reposet := wireRepos(dbs.DB(), log)
	serviceset, err := wireServices(log, cfg, clients, reposet, metrics)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, clients, serviceset)
	middleware := wireMiddleware(log, cfg)
	server := apphttp.NewServer(cfg.HTTP.Addr, routerConfig(log, cfg, metrics, handlerset, middleware))

	mcpServer, err := wireMCP(log, cfg, serviceset)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		return nil, err
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbs,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		MCP:          mcpServer,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP, and MCP and metrics when configured, until ctx is cancelled
// or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}

	if err := a.Services.Knowledge.Init(ctx); err != nil {
		// Ingest ensures the collection again, so a cold vector store is not fatal here.
		a.Log.Warn("knowledge base init failed", "error", err)
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Server.Addr())
		return a.Server.Run()
	})

	if a.MCP != nil && a.Cfg.MCP.Addr != "" {
		g.Go(func() error { return a.MCP.RunHTTP(gctx, a.Cfg.MCP.Addr) })
	}

	metricsSrv := a.Metrics.NewServer(a.Cfg.Metrics.Addr)
	if metricsSrv != nil {
		g.Go(func() error {
			a.Log.Info("metrics server listening", "addr", metricsSrv.Addr)
			return ignoreClosed(metricsSrv.ListenAndServe())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Cfg.HTTP.ShutdownTimeout.Std()
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.Log.Info("shutting down servers")
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	a.Log.Sync()
}
