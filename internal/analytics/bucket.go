// Package analytics aggregates dated transactions into time and key
// buckets and derives scalar spending projections. All functions are
// pure: they take an immutable transaction snapshot plus an explicit
// reference time and allocate fresh results.
package analytics

import (
	"time"

	"spendwise/internal/core"
)

// TimeBucket is a summed amount keyed by the first instant of its
// period (day, week start or month start).
type TimeBucket struct {
	Start time.Time
	Total core.Money
}

// KeyBucket is a summed amount keyed by an identifier such as a
// category or card id.
type KeyBucket struct {
	Key   string
	Total core.Money
}
