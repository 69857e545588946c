package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the ledger queue.
const (
	EventTransactionRecorded = "recorded"
	EventTransactionRemoved  = "removed"
)

// LedgerEvent carries the full transaction payload so the worker never has
// to reach back into the database to mirror it.
type LedgerEvent struct {
	Kind        string    `json:"kind"`
	TxID        string    `json:"txId"`
	Date        string    `json:"date"`
	TopCategory string    `json:"topCategory"`
	ItemName    string    `json:"itemName"`
	Amount      int64     `json:"amount"`
	Memo        string    `json:"memo,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind, txID, date, top, itemName string, amount int64, memo string) *LedgerEvent {
	return &LedgerEvent{
		Kind:        kind,
		TxID:        txID,
		Date:        date,
		TopCategory: top,
		ItemName:    itemName,
		Amount:      amount,
		Memo:        memo,
		Timestamp:   time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
