package analytics

import (
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
)

// AverageDailySpend divides total spend by the number of days in the
// range. Over a degenerate (zero-length) range the raw total comes
// back unchanged, so callers never see a division fault.
func AverageDailySpend(total core.Money, r cycle.DateRange) core.Money {
	days := r.Days()
	if days < 1 {
		return total
	}
	return total.DivInt(int64(days))
}

// ProjectedMonthlySpend extrapolates an average daily spend over a
// fixed 30-day month. It is an approximation and deliberately does not
// match calendar-month aggregation.
func ProjectedMonthlySpend(avgDaily core.Money) core.Money {
	return avgDaily.MulInt(30)
}

// SavingsRate returns the percentage of income left after spending.
// With non-positive income the rate is undefined; the fallback is
// (0, false) and no division takes place.
func SavingsRate(totalSpent, income core.Money) (float64, bool) {
	if income.Cents <= 0 {
		return 0, false
	}
	return float64(income.Cents-totalSpent.Cents) / float64(income.Cents) * 100, true
}

// TopN returns the first n buckets of an already descending-sorted
// sequence, clamped to its length. Negative n is a caller bug.
func TopN(buckets []KeyBucket, n int) ([]KeyBucket, error) {
	if n < 0 {
		return nil, fmt.Errorf("top-n count %d must not be negative", n)
	}
	if n > len(buckets) {
		n = len(buckets)
	}
	out := make([]KeyBucket, n)
	copy(out, buckets[:n])
	return out, nil
}

// GrandTotal sums a transaction snapshot.
func GrandTotal(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
