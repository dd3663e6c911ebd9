// Package clock maps absolute timestamps to tracking days and weeks.
//
// A tracking day is a 24-hour bucket offset from local midnight by a
// configurable boundary hour, so "the day" can end at e.g. 4am. A tracking
// week is 7 consecutive tracking days starting on a configurable weekday.
package clock

import (
	"fmt"
	"math"
	"time"
)

const (
	msPerHour = int64(60 * 60 * 1000)
	dayKeyFmt = "2006-01-02"
)

func shiftForBoundary(ts int64, dayBoundaryHour int) time.Time {
	return time.UnixMilli(ts - int64(dayBoundaryHour)*msPerHour).In(time.Local)
}

// DayKey returns the tracking-day key (YYYY-MM-DD) for a timestamp in
// milliseconds. The timestamp is shifted backward by the boundary hour and
// the local calendar date of the shifted instant is the key.
func DayKey(ts int64, dayBoundaryHour int) string {
	return shiftForBoundary(ts, dayBoundaryHour).Format(dayKeyFmt)
}

// WeekKey returns the tracking-week key (YYYY-W##) for a timestamp in
// milliseconds. Week numbering follows the local-week convention: week 1 is
// the week containing January 1, and weeks begin on weekStartsOn
// (0 = Sunday, 1 = Monday).
func WeekKey(ts int64, weekStartsOn, dayBoundaryHour int) string {
	shifted := shiftForBoundary(ts, dayBoundaryHour)
	year, week := weekOf(shifted, weekStartsOn)
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// TrackingDayRange is the inverse of DayKey: the half-open interval
// [start, end) in milliseconds covered by the given tracking day.
func TrackingDayRange(dayKey string, dayBoundaryHour int) (startMs, endMs int64, err error) {
	base, err := time.ParseInLocation(dayKeyFmt, dayKey, time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid day key %q: %w", dayKey, err)
	}
	start := time.Date(base.Year(), base.Month(), base.Day(), dayBoundaryHour, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1)
	return start.UnixMilli(), end.UnixMilli(), nil
}

// WeekRange returns the half-open interval [start, end) in milliseconds of
// the tracking week containing ts. The range spans exactly 7 tracking days.
func WeekRange(ts int64, weekStartsOn, dayBoundaryHour int) (startMs, endMs int64) {
	shifted := shiftForBoundary(ts, dayBoundaryHour)
	sow := startOfWeek(shifted, weekStartsOn)
	// Map back to absolute time by re-adding the boundary offset.
	start := time.Date(sow.Year(), sow.Month(), sow.Day(), dayBoundaryHour, 0, 0, 0, time.Local)
	endDay := sow.AddDate(0, 0, 7)
	end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), dayBoundaryHour, 0, 0, 0, time.Local)
	return start.UnixMilli(), end.UnixMilli()
}

// startOfWeek returns local midnight of the first day of the week
// containing t.
func startOfWeek(t time.Time, weekStartsOn int) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	diff := (int(day.Weekday()) - weekStartsOn + 7) % 7
	return day.AddDate(0, 0, -diff)
}

// weekYearOf returns the week-numbering year of t: the year whose week 1
// (the week containing January 1) contains t.
func weekYearOf(t time.Time, weekStartsOn int) int {
	year := t.Year()
	nextFirst := startOfWeek(time.Date(year+1, time.January, 1, 0, 0, 0, 0, t.Location()), weekStartsOn)
	if !t.Before(nextFirst) {
		return year + 1
	}
	thisFirst := startOfWeek(time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location()), weekStartsOn)
	if !t.Before(thisFirst) {
		return year
	}
	return year - 1
}

func weekOf(t time.Time, weekStartsOn int) (year, week int) {
	year = weekYearOf(t, weekStartsOn)
	first := startOfWeek(time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location()), weekStartsOn)
	// Count calendar days between week starts; rounding absorbs DST shifts.
	days := int(math.Round(startOfWeek(t, weekStartsOn).Sub(first).Hours() / 24))
	return year, days/7 + 1
}
