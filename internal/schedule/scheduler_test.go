package schedule

import (
	"errors"
	"testing"
	"time"

	"spendwise/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bill(dueDay int, freq core.Frequency, lastPaid *time.Time, leadDays int) core.Bill {
	return core.Bill{
		Name:             "Electric",
		Amount:           core.Money{Cents: 8500},
		DueDay:           dueDay,
		CategoryID:       "utilities",
		Frequency:        freq,
		ReminderLeadDays: leadDays,
		LastPaidAt:       lastPaid,
	}
}

func TestNextMonthly(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		lastPaid *time.Time
		dueDay   int
		wantDue  time.Time
		wantDays int
	}{
		{
			name:     "paid last month, due this month",
			now:      date(2024, 3, 10),
			lastPaid: ptr(date(2024, 2, 15)),
			dueDay:   15,
			wantDue:  date(2024, 3, 15),
			wantDays: 5,
		},
		{
			name:     "paid two months ago advances past missed occurrence",
			now:      date(2024, 3, 10),
			lastPaid: ptr(date(2024, 1, 15)),
			dueDay:   15,
			wantDue:  date(2024, 3, 15),
			wantDays: 5,
		},
		{
			name:     "never paid, due day already passed this month",
			now:      date(2024, 3, 20),
			lastPaid: nil,
			dueDay:   15,
			wantDue:  date(2024, 4, 15),
			wantDays: 26,
		},
		{
			name:     "never paid, due day still ahead",
			now:      date(2024, 3, 10),
			lastPaid: nil,
			dueDay:   15,
			wantDue:  date(2024, 3, 15),
			wantDays: 5,
		},
		{
			name:     "due today",
			now:      time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC),
			lastPaid: nil,
			dueDay:   15,
			wantDue:  date(2024, 3, 15),
			wantDays: 0,
		},
		{
			name:     "year rollover",
			now:      date(2024, 12, 20),
			lastPaid: ptr(date(2024, 12, 15)),
			dueDay:   15,
			wantDue:  date(2025, 1, 15),
			wantDays: 26,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.now, bill(tt.dueDay, core.Monthly, tt.lastPaid, 0))
			if err != nil {
				t.Fatal(err)
			}
			if !got.NextDueAt.Equal(tt.wantDue) {
				t.Errorf("NextDueAt = %v, want %v", got.NextDueAt, tt.wantDue)
			}
			if got.DaysUntilDue != tt.wantDays {
				t.Errorf("DaysUntilDue = %d, want %d", got.DaysUntilDue, tt.wantDays)
			}
			if got.IsOverdue {
				t.Error("IsOverdue = true, want false")
			}
		})
	}
}

func TestNextClampsShortMonths(t *testing.T) {
	// Due day 31, paid on the clamped January occurrence. February
	// clamps to the 29th (leap year), and March recovers the 31st.
	got, err := Next(date(2024, 2, 10), bill(31, core.Monthly, ptr(date(2024, 1, 31)), 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2024, 2, 29); !got.NextDueAt.Equal(want) {
		t.Errorf("NextDueAt = %v, want %v", got.NextDueAt, want)
	}

	got, err = Next(date(2024, 3, 5), bill(31, core.Monthly, ptr(date(2024, 1, 31)), 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2024, 3, 31); !got.NextDueAt.Equal(want) {
		t.Errorf("clamp must not stick: NextDueAt = %v, want %v", got.NextDueAt, want)
	}
}

func TestNextQuarterlyAndYearly(t *testing.T) {
	got, err := Next(date(2024, 3, 10), bill(15, core.Quarterly, ptr(date(2024, 1, 15)), 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2024, 4, 15); !got.NextDueAt.Equal(want) {
		t.Errorf("quarterly NextDueAt = %v, want %v", got.NextDueAt, want)
	}

	got, err = Next(date(2024, 3, 10), bill(15, core.Yearly, ptr(date(2023, 6, 15)), 0))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2024, 6, 15); !got.NextDueAt.Equal(want) {
		t.Errorf("yearly NextDueAt = %v, want %v", got.NextDueAt, want)
	}
}

func TestNextReminderTiming(t *testing.T) {
	got, err := Next(date(2024, 3, 10), bill(15, core.Monthly, nil, 3))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2024, 3, 12); !got.ReminderAt.Equal(want) {
		t.Errorf("ReminderAt = %v, want %v", got.ReminderAt, want)
	}

	// A lead time pushing the reminder before now is still returned as
	// computed; delivery decides whether to suppress it.
	got, err = Next(date(2024, 3, 14), bill(15, core.Monthly, nil, 10))
	if err != nil {
		t.Fatal(err)
	}
	if want := date(2024, 3, 5); !got.ReminderAt.Equal(want) {
		t.Errorf("past ReminderAt = %v, want %v", got.ReminderAt, want)
	}
}

func TestNextValidation(t *testing.T) {
	if _, err := Next(date(2024, 3, 10), bill(0, core.Monthly, nil, 0)); !errors.Is(err, core.ErrInvalidDueDay) {
		t.Errorf("due day 0: err = %v, want ErrInvalidDueDay", err)
	}
	if _, err := Next(date(2024, 3, 10), bill(32, core.Monthly, nil, 0)); !errors.Is(err, core.ErrInvalidDueDay) {
		t.Errorf("due day 32: err = %v, want ErrInvalidDueDay", err)
	}
	if _, err := Next(date(2024, 3, 10), bill(15, "weekly", nil, 0)); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("bad frequency: err = %v, want ErrInvalidFrequency", err)
	}
}

func ptr(t time.Time) *time.Time { return &t }
