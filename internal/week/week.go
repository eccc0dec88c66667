// Package week converts between the two week-boundary conventions used by
// the system: payroll exports arrive keyed by a Tuesday "week starting"
// date, while every API contract and stored row uses the Sunday "week
// ending" date. All conversions live here so that no other package does
// its own day arithmetic on week boundaries.
package week

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for all date-only values.
const DateLayout = "2006-01-02"

// daysFromTuesdayToSunday is the span of a payroll week: a week that
// starts on Tuesday closes on the Sunday five days later.
const daysFromTuesdayToSunday = 5

// UTCMidnight truncates t to midnight UTC, keeping the calendar date of
// its UTC representation.
func UTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekEndingFromWeekStarting converts a Tuesday week-starting date to the
// Sunday week-ending date of the same payroll week. The input is assumed
// to be a Tuesday; this is not validated, and a non-Tuesday input yields
// a date five days later that is not a true week boundary.
func WeekEndingFromWeekStarting(tuesday time.Time) time.Time {
	return UTCMidnight(tuesday).AddDate(0, 0, daysFromTuesdayToSunday)
}

// WeekStartingFromWeekEnding converts a Sunday week-ending date back to
// the Tuesday that started the same payroll week.
func WeekStartingFromWeekEnding(sunday time.Time) time.Time {
	return UTCMidnight(sunday).AddDate(0, 0, -daysFromTuesdayToSunday)
}

// WeekStartingForAnyDate returns the most recent Tuesday on or before d,
// at midnight in d's location.
func WeekStartingForAnyDate(d time.Time) time.Time {
	// Days since the last Tuesday, with mod-7 wraparound for Sun/Mon.
	offset := (int(d.Weekday()) - int(time.Tuesday) + 7) % 7
	t := d.AddDate(0, 0, -offset)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, d.Location())
}

// NextWeekEnding returns the Sunday on or after d at UTC midnight. A
// Sunday input is returned unchanged. Forecast start dates are snapped
// to a reporting boundary with this.
func NextWeekEnding(d time.Time) time.Time {
	t := UTCMidnight(d)
	offset := (7 - int(t.Weekday())) % 7
	return t.AddDate(0, 0, offset)
}

// NormalizeDateString strips any time component from s, reparses the
// date part as UTC midnight, and reserializes it as YYYY-MM-DD. Every
// date string that crosses an API boundary must pass through here:
// date-only and date-time renderings of the same calendar day are not
// equal as strings and must never be compared directly.
func NormalizeDateString(s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(d), nil
}

// ParseDate parses a date string, tolerating a trailing time component
// ("2025-08-04T04:59:59.999Z" and "2025-08-04" both parse to the same
// UTC midnight). The time portion is discarded, not timezone-shifted.
func ParseDate(s string) (time.Time, error) {
	datePart := s
	if i := strings.IndexAny(s, "T "); i >= 0 {
		datePart = s[:i]
	}
	d, err := time.Parse(DateLayout, datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate serializes a date as YYYY-MM-DD using its UTC calendar day.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// IsValidDateString reports whether s parses as a date.
func IsValidDateString(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}
