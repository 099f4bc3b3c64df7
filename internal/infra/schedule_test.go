package infra

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:05")
	if err != nil {
		t.Fatalf("ParseClock failed: %v", err)
	}
	if h != 9 || m != 5 {
		t.Errorf("got %d:%d, want 9:05", h, m)
	}

	for _, bad := range []string{"", "25:00", "09:61", "abc"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestDailyTrigger_Next(t *testing.T) {
	loc := time.UTC
	trig := DailyTrigger{Hour: 9, Minute: 0, Loc: loc, WeekdaysOnly: true}

	// Monday 2026-01-05, 08:00 -> fires the same day at 09:00.
	mondayMorning := time.Date(2026, 1, 5, 8, 0, 0, 0, loc)
	next := trig.Next(mondayMorning)
	want := time.Date(2026, 1, 5, 9, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", mondayMorning, next, want)
	}

	// Monday 09:00 exactly -> fires tomorrow, not now.
	atFire := time.Date(2026, 1, 5, 9, 0, 0, 0, loc)
	next = trig.Next(atFire)
	want = time.Date(2026, 1, 6, 9, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("Next at fire time = %v, want %v", next, want)
	}

	// Friday 10:00 -> skips the weekend to Monday.
	fridayLate := time.Date(2026, 1, 9, 10, 0, 0, 0, loc)
	next = trig.Next(fridayLate)
	want = time.Date(2026, 1, 12, 9, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want Monday %v", fridayLate, next, want)
	}

	// Saturday -> Monday.
	saturday := time.Date(2026, 1, 10, 12, 0, 0, 0, loc)
	next = trig.Next(saturday)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want Monday %v", saturday, next, want)
	}
}

func TestDailyTrigger_NextWithoutWeekdayGate(t *testing.T) {
	loc := time.UTC
	trig := DailyTrigger{Hour: 15, Minute: 0, Loc: loc}

	saturday := time.Date(2026, 1, 10, 12, 0, 0, 0, loc)
	next := trig.Next(saturday)
	want := time.Date(2026, 1, 10, 15, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Errorf("Next(%v) = %v, want %v", saturday, next, want)
	}
}
