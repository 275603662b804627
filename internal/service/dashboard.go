// Package service orchestrates the engines against the ledger. It owns
// no math of its own: it fetches a snapshot, runs the pure engines over
// it and shapes the result into DTOs for the HTTP surface.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/schedule"
)

// Overview is the full dashboard snapshot for one billing cycle.
type Overview struct {
	Cycle     cycle.DateRange
	NextCycle cycle.DateRange

	TotalSpent       core.Money
	AverageDaily     core.Money
	ProjectedMonthly core.Money

	// SavingsRate is the percentage of income left after spending.
	// HasSavingsRate is false when no positive income is configured.
	SavingsRate    float64
	HasSavingsRate bool

	TopCategories []CategorySpend
	ByCard        []CardSpend
	DailySpend    []analytics.TimeBucket
	WeeklySpend   []analytics.TimeBucket
	MonthlyTrend  []analytics.TimeBucket

	UpcomingBills []BillStatus
}

// CategorySpend is a category bucket resolved to its display name.
type CategorySpend struct {
	CategoryID string
	Name       string
	Total      core.Money
}

// CardSpend is a card bucket resolved to its display name.
type CardSpend struct {
	CardID string
	Name   string
	Total  core.Money
}

// BillStatus pairs a bill with its derived schedule facts.
type BillStatus struct {
	Bill  ledger.BillRecord
	Facts schedule.Facts
}

const (
	topCategoryCount = 3
	trendMonthsBack  = 5
)

// DashboardService builds Overview snapshots from the ledger.
type DashboardService struct {
	reader      ledger.Reader
	calc        cycle.Calculator
	incomeCents int64
	logger      *applog.Logger
}

func NewDashboardService(reader ledger.Reader, calc cycle.Calculator, incomeCents int64) *DashboardService {
	return &DashboardService{
		reader:      reader,
		calc:        calc,
		incomeCents: incomeCents,
		logger:      applog.New(applog.Config{Component: applog.ComponentApp}),
	}
}

// BuildOverview computes the dashboard for the cycle containing now.
// All ledger reads happen concurrently before any engine runs, so the
// numbers are derived from a single consistent snapshot.
func (s *DashboardService) BuildOverview(ctx context.Context, now time.Time) (*Overview, error) {
	cur := s.calc.CurrentCycle(now)

	var (
		txs        []core.Transaction
		cards      []core.Card
		categories []core.Category
		bills      []ledger.BillRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.reader.ListTransactions(gctx, cur)
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = s.reader.ListCards(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.reader.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = s.reader.ListBills(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch dashboard snapshot: %w", err)
	}

	total := analytics.GrandTotal(txs)
	avgDaily := analytics.AverageDailySpend(total, cur)

	byCategory := analytics.SumByKey(txs, func(tx core.Transaction) string { return tx.CategoryID })
	topBuckets, err := analytics.TopN(byCategory, topCategoryCount)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}

	rate, hasRate := analytics.SavingsRate(total, core.Money{Cents: s.incomeCents})

	ov := &Overview{
		Cycle:            cur,
		NextCycle:        s.calc.NextCycle(now),
		TotalSpent:       total,
		AverageDaily:     avgDaily,
		ProjectedMonthly: analytics.ProjectedMonthlySpend(avgDaily),
		SavingsRate:      rate,
		HasSavingsRate:   hasRate,
		TopCategories:    resolveCategories(topBuckets, categories),
		ByCard:           resolveCards(analytics.SumByKey(txs, func(tx core.Transaction) string { return tx.CardID }), cards),
		DailySpend:       analytics.BucketByDay(txs, cur),
		WeeklySpend:      analytics.BucketByWeek(txs, cur),
		MonthlyTrend:     analytics.MonthlyTrend(txs, now, trendMonthsBack),
		UpcomingBills:    s.BillStatuses(ctx, now, bills),
	}

	return ov, nil
}

// BillStatuses derives schedule facts for every bill, skipping bills
// whose recurrence descriptor is invalid. The result is sorted by days
// until due, soonest first.
func (s *DashboardService) BillStatuses(ctx context.Context, now time.Time, bills []ledger.BillRecord) []BillStatus {
	out := make([]BillStatus, 0, len(bills))
	for _, rec := range bills {
		facts, err := schedule.Next(now, rec.Bill)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping bill with invalid recurrence",
				applog.FieldBillID, rec.ID,
				applog.FieldBillName, rec.Name,
				applog.FieldError, err.Error())
			continue
		}
		out = append(out, BillStatus{Bill: rec, Facts: facts})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Facts.DaysUntilDue < out[j].Facts.DaysUntilDue
	})
	return out
}

func resolveCategories(buckets []analytics.KeyBucket, categories []core.Category) []CategorySpend {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]CategorySpend, len(buckets))
	for i, b := range buckets {
		name, ok := names[b.Key]
		if !ok {
			name = b.Key
		}
		out[i] = CategorySpend{CategoryID: b.Key, Name: name, Total: b.Total}
	}
	return out
}

func resolveCards(buckets []analytics.KeyBucket, cards []core.Card) []CardSpend {
	names := make(map[string]string, len(cards))
	for _, c := range cards {
		names[c.ID] = c.Name
	}

	out := make([]CardSpend, len(buckets))
	for i, b := range buckets {
		name, ok := names[b.Key]
		if !ok {
			name = b.Key
		}
		out[i] = CardSpend{CardID: b.Key, Name: name, Total: b.Total}
	}
	return out
}
