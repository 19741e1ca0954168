package amqp

import (
	"encoding/json"
	"time"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// LedgerEvent announces one committed ledger mutation. It carries only the
// operation and the transaction id; consumers re-read state from the store.
type LedgerEvent struct {
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewLedgerEvent(op, id string) *LedgerEvent {
	return &LedgerEvent{
		Op:         op,
		ID:         id,
		OccurredAt: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
