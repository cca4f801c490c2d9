package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/meeussunmoon/pkg/lunar"
	"github.com/chrissnell/meeussunmoon/pkg/sunmoon"
)

func main() {
	var timeStr, tz string
	flag.StringVar(&timeStr, "time", "", "Time to show phases around (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	flag.StringVar(&tz, "tz", "UTC", "IANA time zone for the results")
	flag.Parse()

	loc, err := time.LoadLocation(tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading time zone: %v\n", err)
		os.Exit(1)
	}

	t := time.Now()
	if timeStr != "" {
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}
	t = t.In(loc)

	prev, next, err := surrounding(sunmoon.Default(), t, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing moon phases: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Moon Phases around %s\n", t.Format(time.RFC3339))
	fmt.Printf("  Previous:     %-14s %s\n", prev.Phase, prev.Time.Format(time.RFC3339))
	for _, p := range next {
		fmt.Printf("  Next:         %-14s %s\n", p.Phase, p.Time.Format(time.RFC3339))
	}
}

// surrounding returns the last principal phase before t and the four after it
func surrounding(c *sunmoon.Calculator, t time.Time, loc *time.Location) (lunar.PhaseEvent, []lunar.PhaseEvent, error) {
	var all []lunar.PhaseEvent
	for y := t.Year() - 1; y <= t.Year()+1; y++ {
		phases, err := c.YearAllMoonPhases(y, loc)
		if err != nil {
			return lunar.PhaseEvent{}, nil, err
		}
		all = append(all, phases...)
	}

	var prev lunar.PhaseEvent
	for i, p := range all {
		if p.Time.After(t) {
			end := i + 4
			if end > len(all) {
				end = len(all)
			}
			return prev, all[i:end], nil
		}
		prev = p
	}
	return prev, nil, nil
}
