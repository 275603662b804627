// Package memory is an in-process ledger used by tests and the dev
// backend. All methods return copies so callers hold stable snapshots.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger"
)

type Store struct {
	mu           sync.RWMutex
	transactions []core.Transaction
	cards        []core.Card
	categories   []core.Category
	bills        []ledger.BillRecord
	nextID       int
}

var (
	_ ledger.Reader            = (*Store)(nil)
	_ ledger.TransactionWriter = (*Store)(nil)
	_ ledger.BillWriter        = (*Store)(nil)
)

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) ListTransactions(_ context.Context, r cycle.DateRange) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if r.Contains(tx.OccurredAt) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = fmt.Sprintf("tx-%d", s.nextID)
	s.nextID++
	s.transactions = append(s.transactions, tx)
	return tx.ID, nil
}

func (s *Store) ListCards(context.Context) ([]core.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Card(nil), s.cards...), nil
}

func (s *Store) ListCategories(context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *Store) ListBills(context.Context) ([]ledger.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ledger.BillRecord(nil), s.bills...), nil
}

func (s *Store) MarkPaid(_ context.Context, billID string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bills {
		if s.bills[i].ID == billID {
			at := paidAt
			s.bills[i].LastPaidAt = &at
			return nil
		}
	}
	return fmt.Errorf("bill %s: %w", billID, ledger.ErrBillNotFound)
}

func (s *Store) MarkReminded(_ context.Context, billID string, dueAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bills {
		if s.bills[i].ID == billID {
			s.bills[i].LastRemindedDue = dueAt
			return nil
		}
	}
	return fmt.Errorf("bill %s: %w", billID, ledger.ErrBillNotFound)
}

// AddCard seeds a card, assigning an id when missing.
func (s *Store) AddCard(c core.Card) core.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("card-%d", s.nextID)
		s.nextID++
	}
	s.cards = append(s.cards, c)
	return c
}

// AddCategory seeds a category, assigning an id when missing.
func (s *Store) AddCategory(c core.Category) core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = fmt.Sprintf("cat-%d", s.nextID)
		s.nextID++
	}
	s.categories = append(s.categories, c)
	return c
}

// AddBill seeds a bill, assigning an id when missing.
func (s *Store) AddBill(b core.Bill) core.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = fmt.Sprintf("bill-%d", s.nextID)
		s.nextID++
	}
	s.bills = append(s.bills, ledger.BillRecord{Bill: b})
	return b
}
