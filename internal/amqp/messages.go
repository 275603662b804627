package amqp

import (
	"encoding/json"
	"time"
)

// BillReminderMessage tells the notifier that a bill's reminder window
// has opened. It carries the derived schedule facts so the notifier
// does not need to recompute them.
type BillReminderMessage struct {
	BillID       string    `json:"bill_id"`
	Name         string    `json:"name"`
	AmountCents  int64     `json:"amount_cents"`
	DueAt        time.Time `json:"due_at"`
	DaysUntilDue int       `json:"days_until_due"`
	ReminderAt   time.Time `json:"reminder_at"`
	Timestamp    time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *BillReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillReminderMessageFromJSON creates a message from JSON bytes
func BillReminderMessageFromJSON(data []byte) (*BillReminderMessage, error) {
	var msg BillReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
