package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SunEvent is one solar event of one civil date at a named location
type SunEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;column:id"`
	Location   string     `gorm:"column:location;not null;index:idx_sun_events_location_day"`
	Day        string     `gorm:"column:day;type:date;not null;index:idx_sun_events_location_day"`
	Kind       string     `gorm:"column:kind;not null"`
	Latitude   float64    `gorm:"column:latitude;not null"`
	Longitude  float64    `gorm:"column:longitude;not null"`
	Timezone   string     `gorm:"column:timezone;not null"`
	Time       *time.Time `gorm:"column:time"`
	NoEvent    string     `gorm:"column:no_event"`
	ComputedAt time.Time  `gorm:"column:computed_at;not null"`
}

// TableName specifies the table name for SunEvent
func (SunEvent) TableName() string {
	return "sun_events"
}

// MoonPhase is one principal moon phase instant
type MoonPhase struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	Year       int       `gorm:"column:year;not null;index"`
	Phase      int       `gorm:"column:phase;not null"`
	Time       time.Time `gorm:"column:time;not null"`
	ComputedAt time.Time `gorm:"column:computed_at;not null"`
}

// TableName specifies the table name for MoonPhase
func (MoonPhase) TableName() string {
	return "moon_phases"
}

// sunEventID is stable for a location, day and kind, so recomputing a day
// overwrites the stored rows instead of duplicating them.
func sunEventID(location, day, kind string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("sunmoon:sun/%s/%s/%s", location, day, kind)))
}

// moonPhaseID is stable for a lunation instant's year, phase and position in the year
func moonPhaseID(year, phase, index int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("sunmoon:moon/%d/%d/%d", year, phase, index)))
}
