package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk and wire format for calendar dates.
const DateLayout = "2006-01-02"

// MonthLayout formats the month tag stored in the general configuration.
const MonthLayout = "2006-01"

// Clock supplies the current instant. Production code uses SystemClock; tests pin a date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// Date truncates t to its calendar day, expressed as midnight UTC.
// Dates are compared and stored as plain y/m/d values so the clock's location
// only matters when reading "today".
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day according to clock.
func Today(clock Clock) time.Time {
	return Date(clock.Now())
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// MonthTag renders the "YYYY-MM" tag of the month containing t.
func MonthTag(t time.Time) string {
	return t.Format(MonthLayout)
}

// WeekID returns the ISO week identifier ("2025-W03") of the week containing t.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (start, end time.Time) {
	day := Date(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}
