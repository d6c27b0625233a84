package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseTimeOfDay parses "HH:MM" in 24h form.
func parseTimeOfDay(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q (want HH:MM)", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// nextRunAt returns the next UTC unix second strictly after afterUnix at
// which the local wall clock in tz reads timeOfDay. DST gaps and overlaps
// resolve via time.Date normalization.
func nextRunAt(timeOfDay, tz string, afterUnix int64) (int64, error) {
	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return 0, err
	}
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return 0, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	after := time.Unix(afterUnix, 0).In(loc)
	next := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, loc)
	if !next.After(after) {
		next = time.Date(after.Year(), after.Month(), after.Day()+1, hour, minute, 0, 0, loc)
	}
	return next.Unix(), nil
}
