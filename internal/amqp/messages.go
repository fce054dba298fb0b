package amqp

import (
	"encoding/json"
	"time"

	"caixa/internal/core"
)

const (
	EventCreated = "transaction.created"
	EventDeleted = "transaction.deleted"
)

// TransactionEvent notifies the worker of a ledger mutation. It carries the
// full amount breakdown so the worker can adjust daily summaries without a
// read back to the store.
type TransactionEvent struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Unit        string    `json:"unit"`
	OccurredAt  time.Time `json:"occurred_at"` // transaction creation time
	Timestamp   time.Time `json:"timestamp"`   // event emission time
}

// NewTransactionEvent builds an event of the given type from a transaction.
func NewTransactionEvent(eventType string, t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:        eventType,
		ID:          t.ID,
		Kind:        string(t.Kind),
		AmountCents: t.Amount.Cents,
		Method:      string(t.Method),
		Unit:        t.Unit,
		OccurredAt:  t.CreatedAt,
		Timestamp:   time.Now(),
	}
}

// Day returns the calendar day (UTC) the transaction belongs to, the grain
// of the daily summary table.
func (e *TransactionEvent) Day() string {
	return e.OccurredAt.UTC().Format("2006-01-02")
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
