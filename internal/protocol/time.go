package protocol

import (
	"fmt"
	"time"
)

const deviceTimeLayout = "2006-01-02 15:04:05"

// ParseDeviceTime interprets a terminal timestamp ("2026-02-07 15:57:00") in
// the fixed facility timezone. Terminals report wall-clock time with no zone
// marker; the host's local timezone must never be used.
func ParseDeviceTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(deviceTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse device time %q: %w", s, err)
	}
	return t, nil
}

// FormatDeviceTime renders t in the terminal's wall-clock format.
func FormatDeviceTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(deviceTimeLayout)
}

// DateString returns the facility-local calendar date of t as YYYY-MM-DD.
// Attendance sessions are keyed by this date, so it must be computed in
// facility time, not UTC or host time.
func DateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
