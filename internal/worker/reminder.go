// Package worker holds the background processors run by the worker
// binaries. Processors are plain structs driven by a ticker in main.
package worker

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/schedule"
)

// ReminderPublisher is the slice of the AMQP client the processor
// needs. Satisfied by *amqp.Client.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.BillReminderMessage) error
}

// ReminderProcessor scans the ledger for bills whose reminder instant
// has arrived and publishes one reminder per due date.
type ReminderProcessor struct {
	bills     ledger.BillReader
	marker    ledger.BillWriter
	publisher ReminderPublisher
	logger    *applog.Logger
}

func NewReminderProcessor(bills ledger.BillReader, marker ledger.BillWriter, publisher ReminderPublisher) *ReminderProcessor {
	return &ReminderProcessor{
		bills:     bills,
		marker:    marker,
		publisher: publisher,
		logger:    applog.New(applog.Config{Component: applog.ComponentWorker}),
	}
}

// ProcessDueReminders publishes reminders for every bill whose
// ReminderAt is on or before now and whose next due date was not
// already reminded. It returns the number of reminders published.
//
// A bill with an invalid recurrence descriptor is logged and skipped;
// a publish or mark failure skips that bill and the scan continues, so
// one broken bill never starves the rest.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	records, err := p.bills.ListBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}

	published := 0
	for _, rec := range records {
		facts, err := schedule.Next(now, rec.Bill)
		if err != nil {
			p.logger.WarnContext(ctx, "Skipping bill with invalid recurrence",
				applog.FieldBillID, rec.ID,
				applog.FieldBillName, rec.Name,
				applog.FieldError, err.Error())
			continue
		}

		if facts.ReminderAt.After(now) {
			continue
		}
		// Stored in UTC by the repository; Equal compares instants, so
		// no location juggling is needed.
		if rec.LastRemindedDue.Equal(facts.NextDueAt) {
			// Already reminded for this occurrence.
			continue
		}

		msg := &amqp.BillReminderMessage{
			BillID:       rec.ID,
			Name:         rec.Name,
			AmountCents:  rec.Amount.Cents,
			DueAt:        facts.NextDueAt,
			DaysUntilDue: facts.DaysUntilDue,
			ReminderAt:   facts.ReminderAt,
			Timestamp:    now,
		}
		if err := p.publisher.PublishReminder(ctx, msg); err != nil {
			p.logger.ErrorContext(ctx, "Failed to publish reminder",
				applog.NewFields().
					WithBill(rec.ID, rec.Name, rec.Amount.Cents).
					WithOperation(applog.OpPublish).
					WithError(err).
					Args()...)
			continue
		}

		if err := p.marker.MarkReminded(ctx, rec.ID, facts.NextDueAt); err != nil {
			// The reminder went out; a failed mark means a duplicate on
			// the next scan, which the consumer tolerates.
			p.logger.ErrorContext(ctx, "Failed to mark bill reminded",
				applog.FieldBillID, rec.ID,
				applog.FieldError, err.Error())
			continue
		}

		p.logger.InfoContext(ctx, "Reminder published",
			applog.FieldBillID, rec.ID,
			applog.FieldBillName, rec.Name,
			applog.FieldDueAt, facts.NextDueAt,
			applog.FieldDaysUntil, facts.DaysUntilDue)
		published++
	}

	return published, nil
}
