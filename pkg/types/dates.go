package types

import (
	"math"
	"time"
)

// Canonical serialization formats. Date-only fields use DateFormat and
// timestamp fields use DateTimeFormat regardless of how a backend
// stores them natively.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// FormatDate renders t in the canonical date-only form.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// FormatDateTime renders t in the canonical timestamp form.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

// ParseDate parses a canonical date-only string.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}

// ParseDateTime parses a canonical timestamp string.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeFormat, s, time.Local)
}

// DaysLeft returns the whole days from now until the end date, negative
// once the deadline has passed. The end date counts as midnight local
// time and partial days round toward minus infinity, so an experiment
// due tomorrow reports 0 and one due yesterday reports at most -1.
func DaysLeft(endDate string, now time.Time) (int, error) {
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, err
	}
	return int(math.Floor(end.Sub(now).Hours() / 24)), nil
}
