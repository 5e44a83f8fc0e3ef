package calendar

import (
	"testing"
	"time"
)

func TestWeekID(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-01-13", "2025-W03"},
		{"2025-01-19", "2025-W03"},
		{"2024-12-30", "2025-W01"},
		{"2021-01-03", "2020-W53"},
	}

	for _, tc := range cases {
		d, err := ParseDate(tc.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.date, err)
		}
		if got := WeekID(d); got != tc.want {
			t.Fatalf("WeekID(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestWeekRangeMondayToSunday(t *testing.T) {
	for _, raw := range []string{"2025-01-13", "2025-01-16", "2025-01-19"} {
		d, _ := ParseDate(raw)
		start, end := WeekRange(d)
		if FormatDate(start) != "2025-01-13" || FormatDate(end) != "2025-01-19" {
			t.Fatalf("WeekRange(%s) = %s..%s", raw, FormatDate(start), FormatDate(end))
		}
	}
}

func TestTodayUsesClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	// 03:00 UTC on the 2nd is still the 1st at UTC-6.
	clock := FixedClock(time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC).In(loc))

	if got := FormatDate(Today(clock)); got != "2025-03-01" {
		t.Fatalf("Today = %s, want 2025-03-01", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("13/01/2025"); err == nil {
		t.Fatalf("expected parse error")
	}
}
