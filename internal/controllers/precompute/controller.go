package precompute

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/meeussunmoon/internal/controllers"
	"github.com/chrissnell/meeussunmoon/pkg/almanac"
	"github.com/chrissnell/meeussunmoon/pkg/config"
	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"go.uber.org/zap"
)

// DefaultInterval is how often the stored window is moved forward
const DefaultInterval = 24 * time.Hour

// Writer persists precomputed days and moon phases
type Writer interface {
	SaveDays(location string, days []sunmoon.DaySummary) error
	SaveMoonPhases(year int, phases []lunar.PhaseEvent) error
}

// Controller keeps a rolling window of almanac days in the store for every
// configured location.
type Controller struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	writer    Writer
	calc      *sunmoon.Calculator
	locations []config.LocationData
	days      int
	interval  time.Duration
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewController creates a precompute controller for the configured locations
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, writer Writer, calc *sunmoon.Calculator, logger *zap.SugaredLogger) (*Controller, error) {
	if cfg.Storage.Postgres == nil || cfg.Storage.Postgres.PrecomputeDays <= 0 {
		return nil, fmt.Errorf("precompute requires postgres storage with precompute-days set")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Controller{
		ctx:       ctx,
		wg:        wg,
		writer:    writer,
		calc:      calc,
		locations: cfg.Locations,
		days:      cfg.Storage.Postgres.PrecomputeDays,
		interval:  DefaultInterval,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// StartController fills the store once before returning, then refreshes it
// every interval until the context is cancelled.
func (c *Controller) StartController() error {
	c.logger.Infow("starting almanac precompute", "locations", len(c.locations), "days", c.days)

	if err := Precompute(c.ctx, c.writer, c.calc, c.locations, c.now(), c.days, c.logger); err != nil {
		return err
	}

	c.wg.Add(1)
	go c.refresh()
	return nil
}

func (c *Controller) refresh() {
	defer c.wg.Done()

	controllers.RunRefresh(c.ctx, controllers.Refresh{
		Name:     "precompute",
		Interval: c.interval,
		Now:      c.now,
		Run: func(ctx context.Context, start time.Time) error {
			return Precompute(ctx, c.writer, c.calc, c.locations, start, c.days, c.logger)
		},
	}, c.logger)
}

// Precompute stores days of almanac from start for every location, and the
// moon phases of every year those days touch.
func Precompute(ctx context.Context, w Writer, calc *sunmoon.Calculator, locations []config.LocationData, start time.Time, days int, logger *zap.SugaredLogger) error {
	if days <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	years := make(map[int]bool)
	for _, l := range locations {
		if err := ctx.Err(); err != nil {
			return err
		}

		loc, err := l.Location()
		if err != nil {
			return err
		}
		first := start.In(loc)
		last := first.AddDate(0, 0, days-1)

		place := almanac.Place{Name: l.Name, Latitude: l.Latitude, Longitude: l.Longitude, Location: loc}
		a, err := almanac.Compute(calc, place, first, last)
		if err != nil {
			return fmt.Errorf("precomputing %s: %w", l.Name, err)
		}

		summaries := make([]sunmoon.DaySummary, len(a.Days))
		for i, d := range a.Days {
			summaries[i] = d.DaySummary
		}
		if err := w.SaveDays(l.Name, summaries); err != nil {
			return err
		}
		logger.Infow("precomputed almanac", "location", l.Name, "days", len(summaries))

		for y := first.Year(); y <= last.Year(); y++ {
			years[y] = true
		}
	}

	for y := range years {
		phases, err := calc.YearAllMoonPhases(y, time.UTC)
		if err != nil {
			return fmt.Errorf("precomputing moon phases for %d: %w", y, err)
		}
		if err := w.SaveMoonPhases(y, phases); err != nil {
			return err
		}
	}
	return nil
}
