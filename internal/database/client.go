package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/meeussunmoon/internal/log"
	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
	"go.uber.org/zap"
)

const batchSize = 500

// ErrNotConnected is returned when the client is used before Connect
var ErrNotConnected = errors.New("almanac store is not connected")

// Client holds the connection to the PostgreSQL almanac store
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// NewClientWithDB wraps an already opened gorm handle
func NewClientWithDB(db *gorm.DB, logger *zap.SugaredLogger) *Client {
	c := NewClient("", logger)
	c.DB = db
	return c
}

// Connect connects to PostgreSQL and creates the almanac tables
func (c *Client) Connect() error {
	db, err := CreateConnection(c.connectionString)
	if err != nil {
		return err
	}
	c.DB = db

	if err := c.Migrate(); err != nil {
		return err
	}
	c.logger.Info("almanac store connection successful")
	return nil
}

// Migrate creates or updates the almanac tables
func (c *Client) Migrate() error {
	if c.DB == nil {
		return ErrNotConnected
	}
	if err := c.DB.AutoMigrate(&SunEvent{}, &MoonPhase{}); err != nil {
		return fmt.Errorf("migrating almanac store: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveDays stores every event of days for location, replacing rows computed earlier
func (c *Client) SaveDays(location string, days []sunmoon.DaySummary) error {
	if c.DB == nil {
		return ErrNotConnected
	}
	if len(days) == 0 {
		return nil
	}

	now := time.Now().UTC()
	events := make([]SunEvent, 0, len(days)*len(sunmoon.EventKinds))
	for _, d := range days {
		events = append(events, sunEventsFromSummary(location, d, now)...)
	}

	if err := c.upsert(c.DB, &events).Error; err != nil {
		return fmt.Errorf("saving %d days for %s: %w", len(days), location, err)
	}
	c.logger.Debugw("stored almanac days", "location", location, "days", len(days))
	return nil
}

// LoadDays returns the complete stored days for location between the civil
// dates from and to inclusive, with instants in loc. Days missing any event
// are left out.
func (c *Client) LoadDays(location string, loc *time.Location, from, to time.Time) ([]sunmoon.DaySummary, error) {
	if c.DB == nil {
		return nil, ErrNotConnected
	}

	var events []SunEvent
	if err := c.daysQuery(c.DB, location, from, to).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("loading days for %s: %w", location, err)
	}
	return summariesFromSunEvents(events, loc)
}

// DeleteLocation removes every stored day of location
func (c *Client) DeleteLocation(location string) error {
	if c.DB == nil {
		return ErrNotConnected
	}
	if err := c.DB.Where("location = ?", location).Delete(&SunEvent{}).Error; err != nil {
		return fmt.Errorf("deleting days for %s: %w", location, err)
	}
	return nil
}

// SaveMoonPhases stores the phases of year, replacing rows computed earlier
func (c *Client) SaveMoonPhases(year int, phases []lunar.PhaseEvent) error {
	if c.DB == nil {
		return ErrNotConnected
	}
	if len(phases) == 0 {
		return nil
	}

	rows := moonPhasesFromEvents(year, phases, time.Now().UTC())
	if err := c.upsert(c.DB, &rows).Error; err != nil {
		return fmt.Errorf("saving moon phases for %d: %w", year, err)
	}
	return nil
}

// LoadMoonPhases returns the stored phases of year in loc, sorted by time
func (c *Client) LoadMoonPhases(year int, loc *time.Location) ([]lunar.PhaseEvent, error) {
	if c.DB == nil {
		return nil, ErrNotConnected
	}

	var rows []MoonPhase
	if err := c.DB.Where("year = ?", year).Order("time").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading moon phases for %d: %w", year, err)
	}
	return eventsFromMoonPhases(rows, loc), nil
}

func (c *Client) upsert(db *gorm.DB, value any) *gorm.DB {
	return db.Clauses(upsertClause()).CreateInBatches(value, batchSize)
}

// upsertClause overwrites rows whose stable ID already exists
func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}
}

func (c *Client) daysQuery(db *gorm.DB, location string, from, to time.Time) *gorm.DB {
	return db.Where("location = ? AND day BETWEEN ? AND ?", location, from.Format(dayLayout), to.Format(dayLayout)).
		Order("day")
}

// CreateConnection is a helper function to create a database connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,
		},
	)

	log.Info("connecting to PostgreSQL almanac store...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a PostgreSQL connection:", err)
		return nil, err
	}

	return db, nil
}
