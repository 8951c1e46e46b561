package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jax-labs/apexflow/config"
	"github.com/jax-labs/apexflow/engine"
	"github.com/jax-labs/apexflow/exchange"
	"github.com/jax-labs/apexflow/logger"
	"github.com/jax-labs/apexflow/market"
	"github.com/jax-labs/apexflow/notify"
	"github.com/jax-labs/apexflow/observability"
	"github.com/jax-labs/apexflow/server"
	"github.com/jax-labs/apexflow/version"
	"github.com/jax-labs/apexflow/webhook"
)

// App holds the fully wired service. Collaborators are exposed so commands
// can reach into the parts they need (the CLI runs the engine directly, the
// serve command runs the HTTP server).
type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	Prices    market.Source
	Exchanges *exchange.Directory
	Engine    *engine.Engine
	Metrics   *observability.Metrics
	Server    *server.Server

	provider        *observability.Provider
	gracefulTimeout time.Duration
	onStop          []Hook
}

// New validates cfg and wires every collaborator. The returned App is ready
// to serve or to execute workflows; nothing is listening yet.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if err := cfg.ResolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolve secrets: %w", err)
	}

	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		log = logger.New(&cfg.Logging, cfg.Name)
		logger.SetGlobalLogger(log)
	}

	app := &App{
		Config:          cfg,
		Logger:          log,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	provider, err := observability.Init(ctx, cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     version.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	app.provider = provider

	metrics, err := observability.NewMetrics(observability.Meter("github.com/jax-labs/apexflow/server"))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	app.Metrics = metrics

	prices, err := market.NewCached(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}
	app.Prices = prices

	dir, err := buildDirectory(cfg, prices, log)
	if err != nil {
		return nil, err
	}
	app.Exchanges = dir

	app.Engine = engine.New(engine.Deps{
		Prices:    prices,
		Exchanges: dir,
		Hooks:     webhook.NewHTTPSender(cfg.Webhook),
		Notifier:  notify.NewLogNotifier(log),
		Logger:    log,
	}, cfg.Engine)

	app.Server = server.New(cfg.Server, server.Deps{
		Engine:      app.Engine,
		Metrics:     metrics,
		Logger:      log,
		ServiceName: cfg.Name,
	})

	return app, nil
}

// buildDirectory registers every configured exchange connection, plus the
// paper connection when demo mode is on.
func buildDirectory(cfg *config.Config, prices market.Source, log *logger.Logger) (*exchange.Directory, error) {
	dir := exchange.NewDirectory()

	for i, entry := range cfg.Exchanges {
		client, err := exchange.New(exchange.ID(entry.Venue), exchange.Credentials{
			APIKey:    entry.APIKey,
			APISecret: entry.APISecret,
		}, exchange.FactoryConfig{})
		if err != nil {
			return nil, fmt.Errorf("exchanges[%d] (%s): %w", i, entry.ID, err)
		}
		dir.Register(entry.ID, client, entry.Active)
		log.Info("Registered exchange connection", map[string]interface{}{
			"id":     entry.ID,
			"venue":  entry.Venue,
			"active": entry.Active,
		})
	}

	if cfg.Paper.Enabled {
		balances := cfg.Paper.Balances
		if len(balances) == 0 {
			balances = map[string]float64{"USDT": 10000}
		}
		dir.Register("paper", exchange.NewPaper(prices, balances), true)
		log.Info("Paper trading enabled", map[string]interface{}{
			"balances": balances,
		})
	}

	return dir, nil
}

// Run starts the HTTP server, blocks until a shutdown signal or context
// cancellation, then shuts everything down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready", map[string]interface{}{
		"name":    a.Config.Name,
		"version": version.Version,
		"addr":    a.Server.Addr(),
	})
	a.waitForSignal(ctx)

	return a.Shutdown()
}

// RunTask executes a finite task with signal-based cancellation and shuts
// down when it completes. Used by the one-shot CLI commands.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.Shutdown(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) waitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
	}
}

// Shutdown stops the server, runs OnStop hooks and flushes telemetry.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{"error": err.Error()})
		shutdownErr = err
	}

	if err := a.Server.Stop(ctx); err != nil {
		a.Logger.Error("Server shutdown error", map[string]interface{}{"error": err.Error()})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if err := a.provider.Shutdown(ctx); err != nil {
		a.Logger.Error("Telemetry shutdown error", map[string]interface{}{"error": err.Error()})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
