package timeutil

import (
	"fmt"
	"time"
)

// LocalZone names the host's local time zone in configuration.
const LocalZone = "Local"

// LoadZone resolves a tz database name. The empty string and "Local" both
// mean the host zone.
func LoadZone(name string) (*time.Location, error) {
	if name == "" || name == LocalZone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// MinuteOfDayIn is MinuteOfDay after converting t to loc.
func MinuteOfDayIn(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return MinuteOfDay(t.In(loc))
}
