package main

import (
	"context"
	"fmt"
	"os"

	"github.com/genricoloni/mucwidget/internal/config"
	"github.com/genricoloni/mucwidget/internal/control"
	"github.com/genricoloni/mucwidget/internal/cover"
	"github.com/genricoloni/mucwidget/internal/dispatch"
	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/engine"
	"github.com/genricoloni/mucwidget/internal/executor"
	"github.com/genricoloni/mucwidget/internal/fetcher"
	"github.com/genricoloni/mucwidget/internal/handshake"
	"github.com/genricoloni/mucwidget/internal/host"
	"github.com/genricoloni/mucwidget/internal/layout"
	"github.com/genricoloni/mucwidget/internal/monitor"
	"github.com/genricoloni/mucwidget/internal/render"
	"github.com/genricoloni/mucwidget/internal/router"
	"github.com/genricoloni/mucwidget/internal/snapshot"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the dependency graph shared by every command.
// Constructors run only for what a command actually pulls in.
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies
	fx.Provide(
		newLogger,
		config.NewAppConfig,

		// Snapshot store
		newSnapshotStore,
		func(s snapshotStore) domain.SnapshotStore { return s },
		func(s snapshotStore) domain.SnapshotWriter { return s },
		snapshot.NewReader,

		// Render pipeline
		fx.Annotate(fetcher.NewArtFetcher, fx.As(new(domain.Fetcher))),
		newImageDecoder,
		fx.Annotate(cover.NewResolver, fx.As(new(render.CoverResolver))),
		newSelector,
		fx.Annotate(router.NewMonotonicTokens, fx.As(new(router.TokenSource))),
		newRouter,
		host.NewFileHost,
		func(h *host.FileHost) domain.WidgetHost { return h },
		func(h *host.FileHost) engine.InstanceRegistry { return h },
		render.NewRenderer,
		func(r *render.Renderer) engine.Renderer { return r },

		// Desktop adapters
		newOpener,
		monitor.NewMprisMonitor,
		func(m *monitor.MprisMonitor) domain.Monitor { return m },
		func(m *monitor.MprisMonitor) dispatch.PlayerSource { return m },
		newDBusClient,
		newDispatcher,
		engine.NewEngine,

		// Control socket
		func(e *engine.Engine) control.Resizer { return e },
		control.NewServer,
		control.NewClient,

		// Configuration handshake
		handshake.NewRequestContext,
		fx.Annotate(handshake.NewLogProcessor, fx.As(new(handshake.RequestProcessor))),
		newEntryPoint,
		handshake.NewLocalHost,
		newResponder,
	),
)

// newLogger creates a production zap logger at the level named by LOG_LEVEL
func newLogger() (*zap.Logger, error) {
	config.LoadEnv()

	cfg := zap.NewProductionConfig()
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := zap.ParseAtomicLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
		cfg.Level = level
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// snapshotStore is both sides of the preference store
type snapshotStore interface {
	domain.SnapshotStore
	domain.SnapshotWriter
}

func newSnapshotStore(lc fx.Lifecycle, logger *zap.Logger, cfg *config.AppConfig) (snapshotStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return snapshot.NewMemoryStore(), nil
	case config.StoreRedis:
		store := snapshot.NewRedisStore(&cfg.Redis)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				// Unreachable Redis is not fatal: the reader renders defaults
				if err := store.Ping(ctx); err != nil {
					logger.Warn("Redis snapshot store unreachable",
						zap.String("addr", cfg.Redis.Addr),
						zap.Error(err))
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown snapshot store %q", cfg.Store)
	}
}

func newImageDecoder(logger *zap.Logger, f domain.Fetcher, cfg *config.AppConfig) domain.ImageDecoder {
	return cover.NewImagingDecoder(logger, f, cfg.CoverMaxEdge)
}

func newSelector(cfg *config.AppConfig) layout.Selector {
	return layout.NewSelector(cfg.LayoutPolicy, cfg.TallThreshold)
}

func newRouter(cfg *config.AppConfig, tokens router.TokenSource) *router.Router {
	return router.New(router.Options{
		Scheme:       cfg.AppScheme,
		AppPackage:   cfg.AppPackage,
		AudioService: cfg.AudioService,
		HostAPILevel: cfg.HostAPILevel,
	}, tokens)
}

func newOpener(logger *zap.Logger) (domain.Opener, error) {
	opener, err := executor.NewOpener(logger)
	if err != nil {
		return nil, err
	}
	return opener, nil
}

// newDBusClient connects the dispatcher to the session bus. Only commands
// that dispatch triggers pull it in.
func newDBusClient() (monitor.DBusClient, error) {
	conn, err := monitor.NewStdDBusClient()
	if err != nil {
		return nil, fmt.Errorf("session bus connection failed: %w", err)
	}
	return conn, nil
}

func newDispatcher(logger *zap.Logger, conn monitor.DBusClient, players dispatch.PlayerSource, opener domain.Opener, cfg *config.AppConfig) domain.TriggerDispatcher {
	return dispatch.NewMprisDispatcher(logger, conn, players, opener, cfg.AppScheme)
}

func newEntryPoint(logger *zap.Logger, requests *handshake.RequestContext, processor handshake.RequestProcessor, cfg *config.AppConfig) *handshake.EntryPoint {
	return handshake.NewEntryPoint(logger, requests, processor, cfg.AppScheme)
}

func newResponder(logger *zap.Logger, h *handshake.LocalHost, cfg *config.AppConfig) *handshake.Responder {
	return handshake.NewResponder(logger, h, cfg.AppScheme)
}

// registerHooks starts the player monitor and the render loop for the daemon
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, mon *monitor.MprisMonitor, eng *engine.Engine, srv *control.Server) {
	monitorCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Widget daemon started")

			// Start blocks until the monitor is stopped
			go func() {
				if err := mon.Start(monitorCtx); err != nil && monitorCtx.Err() == nil {
					logger.Error("Player monitor exited", zap.Error(err))
				}
			}()

			if err := eng.Start(ctx); err != nil {
				return err
			}
			return srv.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			cancel()

			if err := srv.Stop(ctx); err != nil {
				logger.Warn("Control server shutdown failed", zap.Error(err))
			}
			if err := eng.Stop(ctx); err != nil {
				return err
			}
			return mon.Stop(ctx)
		},
	})
}
