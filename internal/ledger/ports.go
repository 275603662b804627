// Package ledger defines the ports the engine's callers use to fetch
// and persist financial data. Implementations return immutable
// snapshots; the engine itself never touches storage.
package ledger

import (
	"context"
	"errors"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
)

// ErrBillNotFound reports that no stored bill matches the given id.
// BillWriter implementations wrap it so callers can tell a missing
// bill from a storage failure.
var ErrBillNotFound = errors.New("bill not found")

// BillRecord pairs a bill with the reminder bookkeeping the workers
// need. LastRemindedDue is the due date a reminder was last published
// for (zero when none was).
type BillRecord struct {
	core.Bill
	LastRemindedDue time.Time
}

type (
	// TransactionReader returns all transactions whose calendar day
	// falls inside the range. Ordering is unspecified; callers re-sort.
	TransactionReader interface {
		ListTransactions(ctx context.Context, r cycle.DateRange) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (id string, err error)
	}

	CardReader interface {
		ListCards(ctx context.Context) ([]core.Card, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	BillReader interface {
		ListBills(ctx context.Context) ([]BillRecord, error)
	}

	// BillWriter records payment and reminder progress on a bill.
	BillWriter interface {
		MarkPaid(ctx context.Context, billID string, paidAt time.Time) error
		MarkReminded(ctx context.Context, billID string, dueAt time.Time) error
	}
)

// Reader bundles the read ports the dashboard snapshot needs.
type Reader interface {
	TransactionReader
	CardReader
	CategoryReader
	BillReader
}
