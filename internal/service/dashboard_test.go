package service

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()

	card := store.AddCard(core.Card{Name: "Visa", LastFour: "4242", Type: core.CardCredit, IsDefault: true})
	food := store.AddCategory(core.Category{Name: "Food"})
	transport := store.AddCategory(core.Category{Name: "Transport"})
	utilities := store.AddCategory(core.Category{Name: "Utilities"})

	// Cycle for a day-17 calculator and now = 2024-03-25 runs
	// Mar 17 through Apr 16.
	txs := []struct {
		cents int64
		at    time.Time
		cat   string
	}{
		{12000, day(2024, 3, 18), food.ID},
		{8000, day(2024, 3, 20), food.ID},
		{5000, day(2024, 3, 22), transport.ID},
		{3000, day(2024, 3, 25), utilities.ID},
		{90000, day(2024, 2, 10), food.ID}, // previous cycle, excluded
	}
	for _, tx := range txs {
		if _, err := store.CreateTransaction(context.Background(), core.Transaction{
			Amount:     core.Money{Cents: tx.cents},
			OccurredAt: tx.at,
			CategoryID: tx.cat,
			CardID:     card.ID,
		}); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	paid := day(2024, 3, 5)
	store.AddBill(core.Bill{
		Name:             "Rent",
		Amount:           core.Money{Cents: 120000},
		DueDay:           5,
		CategoryID:       utilities.ID,
		Frequency:        core.Monthly,
		ReminderLeadDays: 3,
		LastPaidAt:       &paid,
	})
	store.AddBill(core.Bill{
		Name:             "Electric",
		Amount:           core.Money{Cents: 8500},
		DueDay:           28,
		CategoryID:       utilities.ID,
		Frequency:        core.Monthly,
		ReminderLeadDays: 2,
	})

	return store
}

func TestBuildOverview(t *testing.T) {
	store := seedStore(t)
	calc, err := cycle.New(17)
	if err != nil {
		t.Fatal(err)
	}

	svc := NewDashboardService(store, calc, 500000)
	now := day(2024, 3, 25)

	ov, err := svc.BuildOverview(context.Background(), now)
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}

	if !ov.Cycle.Start.Equal(day(2024, 3, 17)) || !ov.Cycle.End.Equal(day(2024, 4, 16)) {
		t.Errorf("cycle = %v..%v, want Mar 17..Apr 16", ov.Cycle.Start, ov.Cycle.End)
	}
	if !ov.NextCycle.Start.Equal(day(2024, 4, 17)) {
		t.Errorf("next cycle start = %v, want Apr 17", ov.NextCycle.Start)
	}

	// 120 + 80 + 50 + 30 in-cycle; the February transaction is excluded.
	if ov.TotalSpent.Cents != 28000 {
		t.Errorf("total = %d cents, want 28000", ov.TotalSpent.Cents)
	}
	if days := ov.Cycle.Days(); days != 31 {
		t.Fatalf("cycle days = %d, want 31", days)
	}
	if ov.AverageDaily.Cents != 28000/31 {
		t.Errorf("avg daily = %d cents, want %d", ov.AverageDaily.Cents, 28000/31)
	}
	if ov.ProjectedMonthly.Cents != (28000/31)*30 {
		t.Errorf("projected = %d cents, want %d", ov.ProjectedMonthly.Cents, (28000/31)*30)
	}

	// income 5000.00, spent 280.00: rate = (5000-280)/5000 * 100 = 94.4
	if !ov.HasSavingsRate {
		t.Fatal("expected a savings rate with positive income")
	}
	if ov.SavingsRate < 94.39 || ov.SavingsRate > 94.41 {
		t.Errorf("savings rate = %v, want 94.4", ov.SavingsRate)
	}

	if len(ov.TopCategories) != 3 {
		t.Fatalf("top categories = %d, want 3", len(ov.TopCategories))
	}
	if ov.TopCategories[0].Name != "Food" || ov.TopCategories[0].Total.Cents != 20000 {
		t.Errorf("top category = %s/%d, want Food/20000", ov.TopCategories[0].Name, ov.TopCategories[0].Total.Cents)
	}

	if len(ov.ByCard) != 1 || ov.ByCard[0].Name != "Visa" || ov.ByCard[0].Total.Cents != 28000 {
		t.Errorf("by card = %+v, want one Visa bucket of 28000", ov.ByCard)
	}

	if len(ov.DailySpend) != 31 {
		t.Errorf("daily buckets = %d, want 31", len(ov.DailySpend))
	}
	if len(ov.MonthlyTrend) != 6 {
		t.Errorf("trend buckets = %d, want 6", len(ov.MonthlyTrend))
	}

	// Electric due Mar 28 (3 days out) sorts before Rent due Apr 5.
	if len(ov.UpcomingBills) != 2 {
		t.Fatalf("upcoming bills = %d, want 2", len(ov.UpcomingBills))
	}
	if ov.UpcomingBills[0].Bill.Name != "Electric" || ov.UpcomingBills[0].Facts.DaysUntilDue != 3 {
		t.Errorf("first bill = %s in %d days, want Electric in 3",
			ov.UpcomingBills[0].Bill.Name, ov.UpcomingBills[0].Facts.DaysUntilDue)
	}
	if ov.UpcomingBills[1].Bill.Name != "Rent" || ov.UpcomingBills[1].Facts.DaysUntilDue != 11 {
		t.Errorf("second bill = %s in %d days, want Rent in 11",
			ov.UpcomingBills[1].Bill.Name, ov.UpcomingBills[1].Facts.DaysUntilDue)
	}
}

func TestBuildOverviewSkipsInvalidBill(t *testing.T) {
	store := memory.New()
	store.AddBill(core.Bill{
		Name:      "Broken",
		Amount:    core.Money{Cents: 100},
		DueDay:    0, // invalid descriptor
		Frequency: core.Monthly,
	})
	store.AddBill(core.Bill{
		Name:      "Gym",
		Amount:    core.Money{Cents: 3000},
		DueDay:    1,
		Frequency: core.Monthly,
	})

	calc, err := cycle.New(17)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewDashboardService(store, calc, 500000)

	ov, err := svc.BuildOverview(context.Background(), day(2024, 3, 25))
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}
	if len(ov.UpcomingBills) != 1 || ov.UpcomingBills[0].Bill.Name != "Gym" {
		t.Errorf("upcoming bills = %+v, want only Gym", ov.UpcomingBills)
	}
}

func TestBuildOverviewNoIncome(t *testing.T) {
	store := memory.New()
	calc, err := cycle.New(17)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewDashboardService(store, calc, 0)

	ov, err := svc.BuildOverview(context.Background(), day(2024, 3, 25))
	if err != nil {
		t.Fatalf("BuildOverview: %v", err)
	}
	if ov.HasSavingsRate {
		t.Error("savings rate must be unavailable with zero income")
	}
	if ov.SavingsRate != 0 {
		t.Errorf("savings rate = %v, want 0", ov.SavingsRate)
	}
}
