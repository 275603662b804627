package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spendwise/internal/core"
	"spendwise/internal/cycle"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

// SQLiteRepository persists the ledger in a local SQLite database. It
// implements every port in internal/ledger.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

var (
	_ ledger.Reader            = (*SQLiteRepository)(nil)
	_ ledger.TransactionWriter = (*SQLiteRepository)(nil)
	_ ledger.BillWriter        = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: applog.New(applog.Config{Component: applog.ComponentStorage}),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements ledger.TransactionWriter.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id := tx.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, occurred_at, category_id, card_id, store, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tx.Amount.Cents, tx.OccurredAt.UTC(), tx.CategoryID, tx.CardID, tx.Store, tx.Notes)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved",
		applog.FieldTransactionID, id,
		applog.FieldAmountCents, tx.Amount.Cents,
		applog.FieldCategoryID, tx.CategoryID)

	return id, nil
}

// ListTransactions implements ledger.TransactionReader. The range is
// inclusive of whole calendar days, so the upper bound is the midnight
// after the end day.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, dr cycle.DateRange) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, occurred_at, category_id, card_id, store, notes
		FROM transactions
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at`,
		dr.Start.UTC(), dr.End.AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		if err := rows.Scan(&tx.ID, &tx.Amount.Cents, &tx.OccurredAt,
			&tx.CategoryID, &tx.CardID, &tx.Store, &tx.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

func (r *SQLiteRepository) CreateCard(ctx context.Context, c core.Card) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, last_four, card_type, is_default)
		VALUES (?, ?, ?, ?, ?)`,
		id, c.Name, c.LastFour, string(c.Type), c.IsDefault)
	if err != nil {
		return "", fmt.Errorf("create card: %w", err)
	}

	return id, nil
}

// ListCards implements ledger.CardReader.
func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, last_four, card_type, is_default
		FROM cards
		ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var c core.Card
		var cardType string
		if err := rows.Scan(&c.ID, &c.Name, &c.LastFour, &cardType, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Type = core.CardType(cardType)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return cards, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (string, error) {
	if c.Name == "" {
		return "", core.ErrEmptyName
	}

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color, is_default)
		VALUES (?, ?, ?, ?, ?)`,
		id, c.Name, c.Icon, c.Color, c.IsDefault)
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}

	return id, nil
}

// ListCategories implements ledger.CategoryReader.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, color, is_default
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return cats, nil
}

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}

	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}

	var lastPaid sql.NullTime
	if b.LastPaidAt != nil {
		lastPaid = sql.NullTime{Time: b.LastPaidAt.UTC(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (id, name, amount_cents, due_day, category_id, card_id, frequency, reminder_lead_days, last_paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, b.Name, b.Amount.Cents, b.DueDay, b.CategoryID, b.CardID,
		string(b.Frequency), b.ReminderLeadDays, lastPaid)
	if err != nil {
		return "", fmt.Errorf("create bill: %w", err)
	}

	r.logger.InfoContext(ctx, "Bill saved",
		applog.FieldBillID, id,
		applog.FieldBillName, b.Name,
		applog.FieldDueDay, b.DueDay)

	return id, nil
}

// ListBills implements ledger.BillReader.
func (r *SQLiteRepository) ListBills(ctx context.Context) ([]ledger.BillRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, amount_cents, due_day, category_id, card_id, frequency, reminder_lead_days, last_paid_at, last_reminded_due
		FROM bills
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []ledger.BillRecord
	for rows.Next() {
		var rec ledger.BillRecord
		var frequency string
		var lastPaid, lastReminded sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Amount.Cents, &rec.DueDay,
			&rec.CategoryID, &rec.CardID, &frequency, &rec.ReminderLeadDays,
			&lastPaid, &lastReminded); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		rec.Frequency = core.Frequency(frequency)
		if lastPaid.Valid {
			t := lastPaid.Time
			rec.LastPaidAt = &t
		}
		if lastReminded.Valid {
			rec.LastRemindedDue = lastReminded.Time
		}
		bills = append(bills, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}

	return bills, nil
}

// MarkPaid implements ledger.BillWriter.
func (r *SQLiteRepository) MarkPaid(ctx context.Context, billID string, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET last_paid_at = ? WHERE id = ?`,
		paidAt.UTC(), billID)
	if err != nil {
		return fmt.Errorf("mark bill paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark bill paid: bill %s: %w", billID, ledger.ErrBillNotFound)
	}

	r.logger.InfoContext(ctx, "Bill marked paid", applog.FieldBillID, billID)
	return nil
}

// MarkReminded implements ledger.BillWriter. dueAt is the occurrence
// the published reminder was for, used to dedupe future runs.
func (r *SQLiteRepository) MarkReminded(ctx context.Context, billID string, dueAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET last_reminded_due = ? WHERE id = ?`,
		dueAt.UTC(), billID)
	if err != nil {
		return fmt.Errorf("mark bill reminded: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark bill reminded: bill %s: %w", billID, ledger.ErrBillNotFound)
	}

	return nil
}
