package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

type (
	// Frequency is the recurrence period of a bill.
	Frequency string

	// CardType distinguishes the kinds of payment cards a user can register.
	CardType string

	Money struct {
		Cents int64
	}

	// Transaction is a single dated expense. The engine only reads these;
	// they are created and persisted by the storage layer.
	Transaction struct {
		ID         string
		Amount     Money
		OccurredAt time.Time
		CategoryID string
		CardID     string
		Store      string
		Notes      string
	}

	Card struct {
		ID        string
		Name      string
		LastFour  string
		Type      CardType
		IsDefault bool
	}

	Category struct {
		ID        string
		Name      string
		Icon      string
		Color     string
		IsDefault bool
	}

	// Bill is a recurring payment. DueDay, Frequency, LastPaidAt and
	// ReminderLeadDays together form the recurrence descriptor the
	// scheduler consumes.
	Bill struct {
		ID               string
		Name             string
		Amount           Money
		DueDay           int // day of month, 1-31
		CategoryID       string
		CardID           string
		Frequency        Frequency
		ReminderLeadDays int
		LastPaidAt       *time.Time
	}
)

const (
	CardCredit  CardType = "credit"
	CardDebit   CardType = "debit"
	CardPrepaid CardType = "prepaid"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDueDay    = errors.New("due day must be between 1 and 31")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category id")
	ErrEmptyCard        = errors.New("empty card id")
	ErrInvalidDate      = errors.New("invalid date")
)

func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Months returns the length of one recurrence period in calendar months.
func (f Frequency) Months() int {
	switch f {
	case Quarterly:
		return 3
	case Yearly:
		return 12
	default:
		return 1
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.OccurredAt.IsZero() {
		return ErrInvalidDate
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.CardID) == "" {
		return ErrEmptyCard
	}
	if len(t.Store) > 200 {
		return errors.New("store too long (max 200 characters)")
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.LastFour) != 4 {
		return errors.New("last four digits must be exactly 4 characters")
	}
	switch c.Type {
	case CardCredit, CardDebit, CardPrepaid:
	default:
		return errors.New("invalid card type")
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if !b.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if b.ReminderLeadDays < 0 {
		return errors.New("reminder lead days cannot be negative")
	}
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	return nil
}
