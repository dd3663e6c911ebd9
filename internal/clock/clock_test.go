package clock

import (
	"regexp"
	"testing"
	"time"
)

func localMs(year int, month time.Month, day, hour, min int) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local).UnixMilli()
}

func TestDayKeyRespectsBoundaryHour(t *testing.T) {
	// With a 4am boundary, 03:00 belongs to the previous tracking day and
	// 05:00 to the current one.
	if got := DayKey(localMs(2025, time.January, 2, 3, 0), 4); got != "2025-01-01" {
		t.Fatalf("03:00 with boundary 4: got %q, want 2025-01-01", got)
	}
	if got := DayKey(localMs(2025, time.January, 2, 5, 0), 4); got != "2025-01-02" {
		t.Fatalf("05:00 with boundary 4: got %q, want 2025-01-02", got)
	}
}

func TestDayKeyZeroBoundaryIsCalendarDay(t *testing.T) {
	cases := []struct {
		ts   int64
		want string
	}{
		{localMs(2025, time.March, 10, 0, 0), "2025-03-10"},
		{localMs(2025, time.March, 10, 23, 59), "2025-03-10"},
		{localMs(2024, time.December, 31, 12, 0), "2024-12-31"},
	}
	for _, c := range cases {
		if got := DayKey(c.ts, 0); got != c.want {
			t.Fatalf("DayKey(%d, 0) = %q, want %q", c.ts, got, c.want)
		}
	}
}

func TestTrackingDayRangeContainsTimestamp(t *testing.T) {
	for _, h := range []int{0, 1, 4, 12, 23} {
		for _, ts := range []int64{
			localMs(2025, time.January, 2, 3, 0),
			localMs(2025, time.January, 2, 5, 0),
			localMs(2025, time.June, 15, 0, 0),
			localMs(2024, time.February, 29, 23, 30),
		} {
			key := DayKey(ts, h)
			start, end, err := TrackingDayRange(key, h)
			if err != nil {
				t.Fatalf("TrackingDayRange(%q, %d): %v", key, h, err)
			}
			if ts < start || ts >= end {
				t.Fatalf("boundary %d: %d not in [%d, %d) for key %q", h, ts, start, end, key)
			}
		}
	}
}

func TestTrackingDayRangeHalfOpen(t *testing.T) {
	start, end, err := TrackingDayRange("2025-01-02", 4)
	if err != nil {
		t.Fatalf("TrackingDayRange: %v", err)
	}
	if want := localMs(2025, time.January, 2, 4, 0); start != want {
		t.Fatalf("start = %d, want %d", start, want)
	}
	if want := localMs(2025, time.January, 3, 4, 0); end != want {
		t.Fatalf("end = %d, want %d", end, want)
	}
	// A sample exactly at the end boundary belongs to the next day.
	if got := DayKey(end, 4); got != "2025-01-03" {
		t.Fatalf("DayKey(end) = %q, want 2025-01-03", got)
	}
}

func TestTrackingDayRangeRejectsBadKey(t *testing.T) {
	if _, _, err := TrackingDayRange("not-a-date", 4); err == nil {
		t.Fatal("expected error for malformed day key")
	}
}

func TestWeekKeyFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{4}-W\d{2}$`)
	for _, ws := range []int{0, 1} {
		for _, h := range []int{0, 4} {
			for _, ts := range []int64{
				localMs(2025, time.January, 2, 12, 0),
				localMs(2024, time.December, 31, 2, 0),
				localMs(2025, time.July, 6, 18, 0),
			} {
				key := WeekKey(ts, ws, h)
				if !pattern.MatchString(key) {
					t.Fatalf("WeekKey(%d, %d, %d) = %q, want YYYY-W## format", ts, ws, h, key)
				}
			}
		}
	}
}

func TestWeekKeyStableWithinWeek(t *testing.T) {
	// 2025-01-06 is a Monday; with weekStartsOn=1 the whole Mon-Sun span
	// shares one key.
	mon := localMs(2025, time.January, 6, 12, 0)
	sun := localMs(2025, time.January, 12, 12, 0)
	nextMon := localMs(2025, time.January, 13, 12, 0)
	if WeekKey(mon, 1, 0) != WeekKey(sun, 1, 0) {
		t.Fatalf("Monday and Sunday in same week differ: %q vs %q", WeekKey(mon, 1, 0), WeekKey(sun, 1, 0))
	}
	if WeekKey(mon, 1, 0) == WeekKey(nextMon, 1, 0) {
		t.Fatalf("consecutive weeks share key %q", WeekKey(mon, 1, 0))
	}
}

func TestWeekKeyBoundaryShift(t *testing.T) {
	// 02:00 on the week-start day still belongs to the previous tracking
	// week when the boundary is 4am.
	early := localMs(2025, time.January, 6, 2, 0) // Monday 02:00
	late := localMs(2025, time.January, 6, 6, 0)  // Monday 06:00
	if WeekKey(early, 1, 4) == WeekKey(late, 1, 4) {
		t.Fatal("expected 02:00 Monday to fall in previous tracking week")
	}
}

func TestWeekRangeSpansSevenTrackingDays(t *testing.T) {
	for _, ws := range []int{0, 1} {
		for _, h := range []int{0, 4} {
			ts := localMs(2025, time.March, 5, 15, 0)
			start, end := WeekRange(ts, ws, h)
			if ts < start || ts >= end {
				t.Fatalf("ts %d not in week range [%d, %d)", ts, start, end)
			}
			days := 0
			for cur := start; cur < end; {
				key := DayKey(cur, h)
				_, dayEnd, err := TrackingDayRange(key, h)
				if err != nil {
					t.Fatalf("TrackingDayRange(%q): %v", key, err)
				}
				cur = dayEnd
				days++
			}
			if days != 7 {
				t.Fatalf("week range spans %d tracking days, want 7", days)
			}
		}
	}
}

func TestWeekRangeStartsOnConfiguredDay(t *testing.T) {
	ts := localMs(2025, time.March, 5, 15, 0) // Wednesday
	start, _ := WeekRange(ts, 1, 0)
	if wd := time.UnixMilli(start).In(time.Local).Weekday(); wd != time.Monday {
		t.Fatalf("week start weekday = %v, want Monday", wd)
	}
	start, _ = WeekRange(ts, 0, 0)
	if wd := time.UnixMilli(start).In(time.Local).Weekday(); wd != time.Sunday {
		t.Fatalf("week start weekday = %v, want Sunday", wd)
	}
}
