package sunmoon

import "github.com/chrissnell/meeussunmoon/pkg/solar"

// Default no-event markers appended by Format
const (
	DefaultSunHighMarker = "‡"
	DefaultSunLowMarker  = "†"
)

// Settings control rounding, the no-event fallback and formatting.
type Settings struct {
	// RoundToNearestMinute rounds every computed instant to the minute
	RoundToNearestMinute bool
	// ReturnTimeForNoEventCase substitutes a fixed clock time, tagged with
	// the no-event code, when an event does not happen on a date.
	ReturnTimeForNoEventCase bool
	// DateFormatKeys maps a no-event code to the marker Format appends
	DateFormatKeys map[solar.NoEventCode]string
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		DateFormatKeys: map[solar.NoEventCode]string{
			solar.SunHigh: DefaultSunHighMarker,
			solar.SunLow:  DefaultSunLowMarker,
		},
	}
}

// SettingsUpdate is a partial change to Settings. Nil fields are left alone.
type SettingsUpdate struct {
	RoundToNearestMinute     *bool
	ReturnTimeForNoEventCase *bool
	// DateFormatKeys replaces the whole marker table when non-nil
	DateFormatKeys map[solar.NoEventCode]string
}

// Apply returns s with u applied. s is not modified.
func (s Settings) Apply(u SettingsUpdate) Settings {
	out := s.clone()
	if u.RoundToNearestMinute != nil {
		out.RoundToNearestMinute = *u.RoundToNearestMinute
	}
	if u.ReturnTimeForNoEventCase != nil {
		out.ReturnTimeForNoEventCase = *u.ReturnTimeForNoEventCase
	}
	if u.DateFormatKeys != nil {
		out.DateFormatKeys = copyKeys(u.DateFormatKeys)
	}
	return out
}

func (s Settings) clone() Settings {
	s.DateFormatKeys = copyKeys(s.DateFormatKeys)
	return s
}

func copyKeys(m map[solar.NoEventCode]string) map[solar.NoEventCode]string {
	if m == nil {
		return nil
	}
	out := make(map[solar.NoEventCode]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Bool returns a pointer to b, for building a SettingsUpdate
func Bool(b bool) *bool {
	return &b
}
