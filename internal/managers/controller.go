package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/meeussunmoon/internal/controllers/precompute"
	"github.com/chrissnell/meeussunmoon/internal/controllers/restserver"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// Store is the almanac store shared by the controllers: the precompute
// controller writes to it and the REST server reads from it.
type Store interface {
	restserver.AlmanacStore
	precompute.Writer
}

// NewControllerManager creates a new controller manager. store may be nil,
// in which case everything is computed on request.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, provider config.ConfigProvider, cfg *config.ConfigData, calc *sunmoon.Calculator, store Store, logger *zap.SugaredLogger) (ControllerManager, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		logger:      logger,
		controllers: make([]Controller, 0, 2),
	}

	// The store is filled before the REST server starts taking requests
	if store != nil && cfg.Storage.Postgres != nil && cfg.Storage.Postgres.PrecomputeDays > 0 {
		pc, err := precompute.NewController(ctx, wg, cfg, store, calc, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating precompute controller: %v", err)
		}
		cm.controllers = append(cm.controllers, pc)
	}

	var reader restserver.AlmanacStore
	if store != nil {
		reader = store
	}
	rest, err := restserver.NewController(ctx, wg, provider, calc, reader, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating REST server controller: %v", err)
	}
	cm.controllers = append(cm.controllers, rest)

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}
