// Package export builds per-cycle spending summaries and hands them to
// a summary writer, the Google Sheets client in production.
package export

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

// CategoryRow is one category's total within an exported cycle.
type CategoryRow struct {
	CategoryName string
	Total        core.Money
}

// CycleSummary is the exported figure set for one billing cycle.
type CycleSummary struct {
	Cycle cycle.DateRange
	Total core.Money
	Rows  []CategoryRow
}

// SummaryWriter persists a cycle summary to an external destination.
type SummaryWriter interface {
	AppendCycleSummary(ctx context.Context, s CycleSummary) error
}

type ledgerReader interface {
	ledger.TransactionReader
	ledger.CategoryReader
}

// Exporter builds and writes the summary for the most recently
// completed billing cycle.
type Exporter struct {
	reader ledgerReader
	writer SummaryWriter
	calc   cycle.Calculator
	logger *applog.Logger
}

func NewExporter(reader ledgerReader, writer SummaryWriter, calc cycle.Calculator) *Exporter {
	return &Exporter{
		reader: reader,
		writer: writer,
		calc:   calc,
		logger: applog.New(applog.Config{Component: applog.ComponentExport}),
	}
}

// ExportPreviousCycle summarizes the cycle that ended just before the
// one containing now and appends it to the writer.
func (e *Exporter) ExportPreviousCycle(ctx context.Context, now time.Time) error {
	cur := e.calc.CurrentCycle(now)
	prev := e.calc.CurrentCycle(cur.Start.AddDate(0, 0, -1))

	summary, err := e.BuildSummary(ctx, prev)
	if err != nil {
		return err
	}

	if err := e.writer.AppendCycleSummary(ctx, *summary); err != nil {
		return fmt.Errorf("append cycle summary: %w", err)
	}

	e.logger.InfoContext(ctx, "Cycle summary exported",
		applog.FieldCycleStart, prev.Start,
		applog.FieldCycleEnd, prev.End,
		applog.FieldAmountCents, summary.Total.Cents)

	return nil
}

// BuildSummary computes the per-category totals for one cycle.
func (e *Exporter) BuildSummary(ctx context.Context, r cycle.DateRange) (*CycleSummary, error) {
	var (
		txs        []core.Transaction
		categories []core.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = e.reader.ListTransactions(gctx, r)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = e.reader.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch export snapshot: %w", err)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	buckets := analytics.SumByKey(txs, func(tx core.Transaction) string { return tx.CategoryID })
	rows := make([]CategoryRow, len(buckets))
	for i, b := range buckets {
		name, ok := names[b.Key]
		if !ok {
			name = b.Key
		}
		rows[i] = CategoryRow{CategoryName: name, Total: b.Total}
	}

	return &CycleSummary{
		Cycle: r,
		Total: analytics.GrandTotal(txs),
		Rows:  rows,
	}, nil
}
