// Package cycle computes billing-cycle boundaries from a configured
// start-of-month day. A billing cycle runs from the start day of one
// month through the day before the start day of the next month, so a
// start day of 17 yields cycles like Mar 17 - Apr 16.
package cycle

import (
	"fmt"
	"math"
	"time"
)

// DateRange is an inclusive date range. Start and End are midnight
// instants in the reference time's location. A zero-length range
// (Start == End at a non-midnight instant) signals that no valid cycle
// could be computed; see Calculator.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsDegenerate reports whether the range is the zero-length "unknown
// cycle" sentinel. Aggregations over a degenerate range yield no data.
func (r DateRange) IsDegenerate() bool {
	return !r.Start.Before(r.End)
}

// Days returns the inclusive number of calendar days covered by the
// range, or 0 when the range is degenerate.
func (r DateRange) Days() int {
	if r.IsDegenerate() {
		return 0
	}
	// Rounded so a DST transition inside the range cannot skew the count.
	return int(math.Round(r.End.Sub(r.Start).Hours()/24)) + 1
}

// Contains reports whether t's calendar day falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DayIn(t, r.Start.Location())
	return !d.Before(r.Start) && !d.After(r.End)
}

// Calculator derives billing cycles from a fixed cycle start day.
type Calculator struct {
	startDay int
}

// New returns a Calculator for the given cycle start day. Days outside
// 1-31 indicate a caller bug and are rejected.
func New(startDay int) (Calculator, error) {
	if startDay < 1 || startDay > 31 {
		return Calculator{}, fmt.Errorf("cycle start day %d out of range 1-31", startDay)
	}
	return Calculator{startDay: startDay}, nil
}

// StartDay returns the configured cycle start day.
func (c Calculator) StartDay() int {
	return c.startDay
}

// CurrentCycle returns the billing cycle containing now. The start day
// clamps to the last day of short months (start day 31 in February
// begins on Feb 28/29). If calendar arithmetic cannot produce a valid
// window the degenerate range {now, now} is returned and callers must
// treat it as "unknown cycle".
func (c Calculator) CurrentCycle(now time.Time) DateRange {
	today := Day(now)
	candidate := clampedDate(today.Year(), int(today.Month()), c.startDay, today.Location())

	var start time.Time
	if today.Before(candidate) {
		// Still inside the cycle that began last month.
		start = clampedDate(today.Year(), int(today.Month())-1, c.startDay, today.Location())
	} else {
		start = candidate
	}
	end := clampedDate(start.Year(), int(start.Month())+1, c.startDay, start.Location()).AddDate(0, 0, -1)

	r := DateRange{Start: start, End: end}
	if r.IsDegenerate() || !r.Contains(now) {
		return DateRange{Start: now, End: now}
	}
	return r
}

// NextCycle returns the cycle immediately following CurrentCycle(now).
// Its start is always the day after the current cycle's end.
func (c Calculator) NextCycle(now time.Time) DateRange {
	cur := c.CurrentCycle(now)
	if cur.IsDegenerate() {
		return DateRange{Start: now, End: now}
	}
	start := cur.End.AddDate(0, 0, 1)
	end := clampedDate(start.Year(), int(start.Month())+1, c.startDay, start.Location()).AddDate(0, 0, -1)

	r := DateRange{Start: start, End: end}
	if r.IsDegenerate() {
		return DateRange{Start: now, End: now}
	}
	return r
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	return DayIn(t, t.Location())
}

// DayIn reduces t to its calendar day and rebuilds it as midnight in
// loc. Stored instants and range boundaries do not share a location
// in general, so comparisons between them must go through here.
func DayIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// clampedDate builds the date year/month/day with day clamped to the
// last valid day of the month. month may be outside 1-12; time.Date
// normalizes it (month 0 is December of the previous year).
func clampedDate(year, month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
