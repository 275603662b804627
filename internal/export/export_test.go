package export

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger/memory"
)

type fakeWriter struct {
	summaries []CycleSummary
}

func (f *fakeWriter) AppendCycleSummary(_ context.Context, s CycleSummary) error {
	f.summaries = append(f.summaries, s)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExportPreviousCycle(t *testing.T) {
	store := memory.New()
	card := store.AddCard(core.Card{Name: "Visa", LastFour: "4242", Type: core.CardCredit})
	food := store.AddCategory(core.Category{Name: "Food"})
	transport := store.AddCategory(core.Category{Name: "Transport"})

	// now = Mar 25 with a day-17 calculator: the previous cycle runs
	// Feb 17 through Mar 16.
	seed := []struct {
		cents int64
		at    time.Time
		cat   string
	}{
		{10000, day(2024, 2, 20), food.ID},
		{4000, day(2024, 3, 10), transport.ID},
		{2500, day(2024, 3, 1), food.ID},
		{7000, day(2024, 3, 20), food.ID}, // current cycle, excluded
	}
	for _, tx := range seed {
		if _, err := store.CreateTransaction(context.Background(), core.Transaction{
			Amount:     core.Money{Cents: tx.cents},
			OccurredAt: tx.at,
			CategoryID: tx.cat,
			CardID:     card.ID,
		}); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	calc, err := cycle.New(17)
	if err != nil {
		t.Fatal(err)
	}

	writer := &fakeWriter{}
	exp := NewExporter(store, writer, calc)

	if err := exp.ExportPreviousCycle(context.Background(), day(2024, 3, 25)); err != nil {
		t.Fatalf("ExportPreviousCycle: %v", err)
	}

	if len(writer.summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(writer.summaries))
	}
	s := writer.summaries[0]

	if !s.Cycle.Start.Equal(day(2024, 2, 17)) || !s.Cycle.End.Equal(day(2024, 3, 16)) {
		t.Errorf("cycle = %v..%v, want Feb 17..Mar 16", s.Cycle.Start, s.Cycle.End)
	}
	if s.Total.Cents != 16500 {
		t.Errorf("total = %d cents, want 16500", s.Total.Cents)
	}

	if len(s.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(s.Rows))
	}
	if s.Rows[0].CategoryName != "Food" || s.Rows[0].Total.Cents != 12500 {
		t.Errorf("rows[0] = %s/%d, want Food/12500", s.Rows[0].CategoryName, s.Rows[0].Total.Cents)
	}
	if s.Rows[1].CategoryName != "Transport" || s.Rows[1].Total.Cents != 4000 {
		t.Errorf("rows[1] = %s/%d, want Transport/4000", s.Rows[1].CategoryName, s.Rows[1].Total.Cents)
	}
}

func TestBuildSummaryEmptyCycle(t *testing.T) {
	calc, err := cycle.New(17)
	if err != nil {
		t.Fatal(err)
	}
	exp := NewExporter(memory.New(), &fakeWriter{}, calc)

	s, err := exp.BuildSummary(context.Background(), calc.CurrentCycle(day(2024, 3, 25)))
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if s.Total.Cents != 0 || len(s.Rows) != 0 {
		t.Errorf("empty cycle summary = %+v, want zero total and no rows", s)
	}
}
