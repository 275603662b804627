// Package schedule derives due-date facts for recurring bills. The
// scheduler is stateless: every call re-derives the next occurrence
// from the bill's recurrence descriptor and an explicit now, so missed
// payments need no stored history beyond the last paid date.
package schedule

import (
	"fmt"
	"math"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
)

// Facts are the derived scheduling facts for one bill. They are
// recomputed on demand and never persisted.
type Facts struct {
	NextDueAt    time.Time
	DaysUntilDue int
	IsOverdue    bool
	ReminderAt   time.Time
}

// Next computes the bill's next due date relative to now.
//
// The anchor occurrence is the due day in the month one recurrence
// period after the last payment, or the due day of now's month when
// the bill was never paid. The due day clamps to short months, and the
// anchor advances one period at a time until it is on or after now's
// calendar day. ReminderAt is always NextDueAt minus the lead days,
// even when that instant already passed; suppressing stale reminders
// is the delivery side's call.
func Next(now time.Time, bill core.Bill) (Facts, error) {
	if bill.DueDay < 1 || bill.DueDay > 31 {
		return Facts{}, fmt.Errorf("bill %q: %w", bill.Name, core.ErrInvalidDueDay)
	}
	if !bill.Frequency.Valid() {
		return Facts{}, fmt.Errorf("bill %q: %w: %q", bill.Name, core.ErrInvalidFrequency, bill.Frequency)
	}

	today := cycle.Day(now)
	step := bill.Frequency.Months()

	// Track the occurrence month as year/month integers and clamp the
	// day on every candidate, so a clamped February occurrence still
	// lands on the 31st in March.
	var year, month int
	if bill.LastPaidAt != nil && !bill.LastPaidAt.IsZero() {
		paid := cycle.DayIn(*bill.LastPaidAt, today.Location())
		year, month = paid.Year(), int(paid.Month())+step
	} else {
		year, month = today.Year(), int(today.Month())
	}

	due := clampedDate(year, month, bill.DueDay, today.Location())
	for due.Before(today) {
		month += step
		due = clampedDate(year, month, bill.DueDay, today.Location())
	}

	days := int(math.Round(due.Sub(today).Hours() / 24))
	return Facts{
		NextDueAt:    due,
		DaysUntilDue: days,
		IsOverdue:    days < 0,
		ReminderAt:   due.AddDate(0, 0, -bill.ReminderLeadDays),
	}, nil
}

func clampedDate(year, month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
