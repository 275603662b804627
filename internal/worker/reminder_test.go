package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/ledger/memory"
)

type fakePublisher struct {
	published []*amqp.BillReminderMessage
	err       error
}

func (f *fakePublisher) PublishReminder(_ context.Context, msg *amqp.BillReminderMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProcessDueReminders(t *testing.T) {
	store := memory.New()

	// Due Mar 28 with 3 lead days: reminder window opens Mar 25.
	due := store.AddBill(core.Bill{
		Name:             "Electric",
		Amount:           core.Money{Cents: 8500},
		DueDay:           28,
		CategoryID:       "cat-1",
		Frequency:        core.Monthly,
		ReminderLeadDays: 3,
	})
	// Due Apr 10: reminder window still far off.
	store.AddBill(core.Bill{
		Name:             "Insurance",
		Amount:           core.Money{Cents: 15000},
		DueDay:           10,
		CategoryID:       "cat-1",
		Frequency:        core.Monthly,
		ReminderLeadDays: 3,
	})

	pub := &fakePublisher{}
	proc := NewReminderProcessor(store, store, pub)
	now := day(2024, 3, 25)

	n, err := proc.ProcessDueReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}
	if n != 1 {
		t.Fatalf("published = %d, want 1", n)
	}
	if len(pub.published) != 1 {
		t.Fatalf("publisher got %d messages, want 1", len(pub.published))
	}

	msg := pub.published[0]
	if msg.BillID != due.ID || msg.Name != "Electric" {
		t.Errorf("published bill = %s/%s, want %s/Electric", msg.BillID, msg.Name, due.ID)
	}
	if !msg.DueAt.Equal(day(2024, 3, 28)) || msg.DaysUntilDue != 3 {
		t.Errorf("due = %v in %d days, want Mar 28 in 3", msg.DueAt, msg.DaysUntilDue)
	}

	// Second scan the same day publishes nothing: the occurrence was
	// marked as reminded.
	n, err = proc.ProcessDueReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if n != 0 {
		t.Errorf("second scan published %d, want 0", n)
	}
}

func TestProcessDueRemindersNextOccurrence(t *testing.T) {
	store := memory.New()
	paid := day(2024, 3, 28)
	bill := store.AddBill(core.Bill{
		Name:             "Electric",
		Amount:           core.Money{Cents: 8500},
		DueDay:           28,
		CategoryID:       "cat-1",
		Frequency:        core.Monthly,
		ReminderLeadDays: 3,
		LastPaidAt:       &paid,
	})
	// Reminded for March already; April is a new occurrence.
	if err := store.MarkReminded(context.Background(), bill.ID, day(2024, 3, 28)); err != nil {
		t.Fatal(err)
	}

	pub := &fakePublisher{}
	proc := NewReminderProcessor(store, store, pub)

	n, err := proc.ProcessDueReminders(context.Background(), day(2024, 4, 26))
	if err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}
	if n != 1 {
		t.Fatalf("published = %d, want 1", n)
	}
	if !pub.published[0].DueAt.Equal(day(2024, 4, 28)) {
		t.Errorf("due = %v, want Apr 28", pub.published[0].DueAt)
	}
}

func TestProcessDueRemindersSkipsInvalid(t *testing.T) {
	store := memory.New()
	store.AddBill(core.Bill{
		Name:      "Broken",
		Amount:    core.Money{Cents: 100},
		DueDay:    40,
		Frequency: core.Monthly,
	})

	pub := &fakePublisher{}
	proc := NewReminderProcessor(store, store, pub)

	n, err := proc.ProcessDueReminders(context.Background(), day(2024, 3, 25))
	if err != nil {
		t.Fatalf("ProcessDueReminders: %v", err)
	}
	if n != 0 || len(pub.published) != 0 {
		t.Errorf("published %d messages for an invalid bill, want 0", len(pub.published))
	}
}

func TestProcessDueRemindersPublishFailure(t *testing.T) {
	store := memory.New()
	store.AddBill(core.Bill{
		Name:             "Electric",
		Amount:           core.Money{Cents: 8500},
		DueDay:           28,
		CategoryID:       "cat-1",
		Frequency:        core.Monthly,
		ReminderLeadDays: 3,
	})

	pub := &fakePublisher{err: errors.New("broker down")}
	proc := NewReminderProcessor(store, store, pub)
	now := day(2024, 3, 25)

	n, err := proc.ProcessDueReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("scan must not fail on a publish error: %v", err)
	}
	if n != 0 {
		t.Errorf("published = %d, want 0", n)
	}

	// The failed bill was not marked, so a later scan retries it.
	pub.err = nil
	n, err = proc.ProcessDueReminders(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("retry published = %d, want 1", n)
	}
}

// SQLite stores the reminded-due instant in UTC while the scan
// computes due dates in the host location. The dedupe must compare
// instants, so the UTC round-trip cannot cause a second publish.
func TestProcessDueRemindersDedupeAcrossLocations(t *testing.T) {
	store := memory.New()
	b := store.AddBill(core.Bill{
		Name:             "Electric",
		Amount:           core.Money{Cents: 8500},
		DueDay:           28,
		CategoryID:       "cat-1",
		Frequency:        core.Monthly,
		ReminderLeadDays: 3,
	})

	pub := &fakePublisher{}
	proc := NewReminderProcessor(store, store, pub)
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 25, 9, 0, 0, 0, loc)

	n, err := proc.ProcessDueReminders(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("published = %d, want 1", n)
	}

	// Overwrite the mark with its UTC rendering, as a read back from
	// storage would deliver it.
	if err := store.MarkReminded(context.Background(), b.ID, pub.published[0].DueAt.UTC()); err != nil {
		t.Fatal(err)
	}

	n, err = proc.ProcessDueReminders(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second scan published = %d, want 0", n)
	}
}
