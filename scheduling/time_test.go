package scheduling_test

import (
	"testing"
	"time"

	"github.com/warp/shift-engine/scheduling"
)

func TestWeekOf(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-01-13", "2025-01-13"}, // Monday maps to itself
		{"2025-01-15", "2025-01-13"}, // Wednesday
		{"2025-01-19", "2025-01-13"}, // Sunday belongs to the preceding Monday
		{"2025-01-20", "2025-01-20"}, // next Monday
	}

	for _, tc := range cases {
		d, err := scheduling.ParseDate(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := scheduling.WeekOf(d); got.String() != tc.want {
			t.Errorf("WeekOf(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestWeekDates(t *testing.T) {
	start := scheduling.NewDate(2025, time.January, 13)
	dates := scheduling.WeekDates(start)

	if len(dates) != 7 {
		t.Fatalf("got %d dates, want 7", len(dates))
	}
	if !dates[0].Equal(start) {
		t.Errorf("first date = %s, want %s", dates[0], start)
	}
	if dates[6].String() != "2025-01-19" {
		t.Errorf("last date = %s, want 2025-01-19", dates[6])
	}
	weekends := 0
	for _, d := range dates {
		if d.IsWeekend() {
			weekends++
		}
	}
	if weekends != 2 {
		t.Errorf("got %d weekend days, want 2", weekends)
	}
}

func TestDaysBetween(t *testing.T) {
	a := scheduling.NewDate(2025, time.January, 13)
	b := a.AddDays(6)

	if got := scheduling.DaysBetween(a, b); got != 6 {
		t.Errorf("DaysBetween = %d, want 6", got)
	}
	if got := scheduling.DaysBetween(b, a); got != -6 {
		t.Errorf("reverse DaysBetween = %d, want -6", got)
	}
	if got := scheduling.DaysBetween(a, a); got != 0 {
		t.Errorf("same-day DaysBetween = %d, want 0", got)
	}
}

func TestDateOfDropsClock(t *testing.T) {
	late := time.Date(2025, time.March, 3, 23, 59, 0, 0, time.UTC)
	if got := scheduling.DateOf(late).String(); got != "2025-03-03" {
		t.Errorf("DateOf = %s, want 2025-03-03", got)
	}
}
