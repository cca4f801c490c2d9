package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/meeussunmoon/internal/database"
	"github.com/chrissnell/meeussunmoon/internal/log"
	"github.com/chrissnell/meeussunmoon/internal/managers"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	overrides      sunmoon.SettingsUpdate
}

// New creates a new application instance. overrides are applied on top of
// the configured settings, typically from command line flags.
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger, overrides sunmoon.SettingsUpdate) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		configProvider: configProvider,
		logger:         logger,
		overrides:      overrides,
	}
}

// NewCalculator builds the calculator for configured settings plus overrides
func NewCalculator(settings config.SettingsData, overrides sunmoon.SettingsUpdate, logger *zap.Logger) *sunmoon.Calculator {
	s := sunmoon.DefaultSettings().Apply(settings.Update()).Apply(overrides)
	return sunmoon.New(s, sunmoon.WithLogger(logger))
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	calc := NewCalculator(cfg.Settings, a.overrides, log.GetZapLogger())
	sunmoon.SetDefault(calc)

	var store managers.Store
	if pg := cfg.Storage.Postgres; pg != nil {
		client := database.NewClient(pg.ConnectionString, a.logger)
		if err := client.Connect(); err != nil {
			return fmt.Errorf("connecting to almanac store: %w", err)
		}
		defer client.Close()
		store = client
	}

	controllerManager, err := managers.NewControllerManager(ctx, &wg, a.configProvider, cfg, calc, store, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create controller manager: %w", err)
	}
	if err := controllerManager.StartControllers(); err != nil {
		return fmt.Errorf("failed to start controllers: %w", err)
	}

	log.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
