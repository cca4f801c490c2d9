package config

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

const coordinateTolerance = 0.000001

// Compare lists the differences between two configurations, e.g. a YAML file
// and the SQLite database converted from it. Locations are matched by name,
// so their order does not matter. An empty result means a and b are
// equivalent.
func Compare(a, b *ConfigData) []string {
	var diffs []string

	byName := make(map[string]LocationData, len(b.Locations))
	for _, l := range b.Locations {
		byName[l.Name] = l
	}
	seen := make(map[string]bool, len(a.Locations))
	for _, la := range a.Locations {
		seen[la.Name] = true
		lb, ok := byName[la.Name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("location %s: only in first", la.Name))
			continue
		}
		diffs = append(diffs, compareLocations(la, lb)...)
	}
	var extra []string
	for name := range byName {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		diffs = append(diffs, fmt.Sprintf("location %s: only in second", name))
	}

	if !equalBool(a.Settings.RoundToNearestMinute, b.Settings.RoundToNearestMinute) {
		diffs = append(diffs, "settings: round-to-nearest-minute differs")
	}
	if !equalBool(a.Settings.ReturnTimeForNoEventCase, b.Settings.ReturnTimeForNoEventCase) {
		diffs = append(diffs, "settings: return-time-for-no-event-case differs")
	}
	if len(a.Settings.DateFormatKeys) != 0 || len(b.Settings.DateFormatKeys) != 0 {
		if !reflect.DeepEqual(a.Settings.DateFormatKeys, b.Settings.DateFormatKeys) {
			diffs = append(diffs, "settings: date-format-keys differ")
		}
	}

	if !reflect.DeepEqual(a.Storage, b.Storage) {
		diffs = append(diffs, "storage configuration differs")
	}
	if !reflect.DeepEqual(a.RESTServer, b.RESTServer) {
		diffs = append(diffs, "REST server configuration differs")
	}
	return diffs
}

func compareLocations(a, b LocationData) []string {
	var diffs []string
	if math.Abs(a.Latitude-b.Latitude) >= coordinateTolerance {
		diffs = append(diffs, fmt.Sprintf("location %s: latitude %v != %v", a.Name, a.Latitude, b.Latitude))
	}
	if math.Abs(a.Longitude-b.Longitude) >= coordinateTolerance {
		diffs = append(diffs, fmt.Sprintf("location %s: longitude %v != %v", a.Name, a.Longitude, b.Longitude))
	}
	if a.Timezone != b.Timezone {
		diffs = append(diffs, fmt.Sprintf("location %s: timezone %q != %q", a.Name, a.Timezone, b.Timezone))
	}
	return diffs
}

func equalBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
