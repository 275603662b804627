package analytics

import (
	"sort"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
)

// SumByKey groups transactions by a caller-supplied key extractor and
// sums the amount per key. Buckets come back sorted by total
// descending; ties keep first-seen key order. The same algorithm backs
// both the category and the card breakdown.
func SumByKey(txs []core.Transaction, keyOf func(core.Transaction) string) []KeyBucket {
	index := make(map[string]int, len(txs))
	buckets := make([]KeyBucket, 0, len(txs))
	for _, tx := range txs {
		key := keyOf(tx)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, KeyBucket{Key: key})
		}
		buckets[i].Total = buckets[i].Total.Add(tx.Amount)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Total.Cents > buckets[j].Total.Cents
	})
	return buckets
}

// BucketByDay produces one bucket per calendar day in the range,
// oldest first. Days without transactions stay at total zero, so the
// bucket count equals the range length regardless of the data.
// A degenerate range yields no buckets.
func BucketByDay(txs []core.Transaction, r cycle.DateRange) []TimeBucket {
	if r.IsDegenerate() {
		return nil
	}
	buckets := make([]TimeBucket, 0, r.Days())
	index := make(map[time.Time]int, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		index[d] = len(buckets)
		buckets = append(buckets, TimeBucket{Start: d})
	}
	for _, tx := range txs {
		day := cycle.DayIn(tx.OccurredAt, r.Start.Location())
		if i, ok := index[day]; ok {
			buckets[i].Total = buckets[i].Total.Add(tx.Amount)
		}
	}
	return buckets
}

// BucketByWeek buckets the range's transactions by week start
// (Monday). Every day in the range establishes its week's bucket, so
// quiet weeks appear with total zero instead of being skipped.
// Chronological order, degenerate ranges yield no buckets.
func BucketByWeek(txs []core.Transaction, r cycle.DateRange) []TimeBucket {
	if r.IsDegenerate() {
		return nil
	}
	var buckets []TimeBucket
	index := make(map[time.Time]int)
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		ws := weekStart(d)
		if _, ok := index[ws]; !ok {
			index[ws] = len(buckets)
			buckets = append(buckets, TimeBucket{Start: ws})
		}
	}
	for _, tx := range txs {
		day := cycle.DayIn(tx.OccurredAt, r.Start.Location())
		if !r.Contains(day) {
			continue
		}
		i, ok := index[weekStart(day)]
		if !ok {
			continue
		}
		buckets[i].Total = buckets[i].Total.Add(tx.Amount)
	}
	return buckets
}

// MonthlyTrend returns one bucket per calendar month, from monthsBack
// months before now through the month containing now, oldest first.
// Each bucket is keyed by the month's first day and sums every
// transaction of that calendar month, independent of any billing
// cycle. Negative monthsBack yields only the current month.
func MonthlyTrend(txs []core.Transaction, now time.Time, monthsBack int) []TimeBucket {
	if monthsBack < 0 {
		monthsBack = 0
	}
	loc := now.Location()
	buckets := make([]TimeBucket, 0, monthsBack+1)
	for offset := -monthsBack; offset <= 0; offset++ {
		monthStart := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, loc)
		monthEnd := time.Date(monthStart.Year(), monthStart.Month()+1, 0, 0, 0, 0, 0, loc)

		var total core.Money
		for _, tx := range txs {
			day := cycle.DayIn(tx.OccurredAt, loc)
			if !day.Before(monthStart) && !day.After(monthEnd) {
				total = total.Add(tx.Amount)
			}
		}
		buckets = append(buckets, TimeBucket{Start: monthStart, Total: total})
	}
	return buckets
}

// weekStart returns the Monday of the week containing d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
