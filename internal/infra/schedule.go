package infra

import (
	"fmt"
	"time"
)

// ParseClock parses a "HH:MM" wall-clock string.
func ParseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("malformed clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q out of range", s)
	}
	return hour, minute, nil
}

// DailyTrigger fires once per calendar day at a fixed wall-clock time,
// optionally skipping weekends. It replaces cron-expression scheduling
// with an explicit next-fire computation.
type DailyTrigger struct {
	Hour         int
	Minute       int
	Loc          *time.Location
	WeekdaysOnly bool
}

// NewDailyTrigger builds a trigger from a "HH:MM" string.
func NewDailyTrigger(clock string, loc *time.Location, weekdaysOnly bool) (DailyTrigger, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return DailyTrigger{}, err
	}
	return DailyTrigger{Hour: h, Minute: m, Loc: loc, WeekdaysOnly: weekdaysOnly}, nil
}

// Next returns the first fire time strictly after now.
func (d DailyTrigger) Next(now time.Time) time.Time {
	local := now.In(d.Loc)
	fire := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, d.Loc)
	if !fire.After(local) {
		fire = fire.AddDate(0, 0, 1)
	}
	for d.WeekdaysOnly && isWeekend(fire) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// TodayAt returns today's occurrence of the wall-clock time, whether or
// not it has already passed.
func (d DailyTrigger) TodayAt(now time.Time) time.Time {
	local := now.In(d.Loc)
	return time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, d.Loc)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
