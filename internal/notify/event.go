// Package notify adapts the teacher's workspace-keyed WebSocket hub
// (internal/websocket) to the ledger's contract-keyed live-notification
// surface. Every event carries only a fact kind, fact id, and
// transaction id — never derived state, since a client's view is only
// ever as fresh as the next read against the event store (spec.md §6
// "Live notification").
package notify

import (
	"encoding/json"
	"time"

	"github.com/dafibh/murabaha-ledger/internal/fact"
)

// EventType is the closed set of notifications a client can receive.
type EventType string

const (
	EventFactAppended  EventType = "fact-appended"
	EventFactRetracted EventType = "fact-retracted"
)

// Event is the WebSocket message pushed to clients watching a contract.
type Event struct {
	Type      EventType `json:"type"`
	FactKind  string    `json:"factKind,omitempty"`
	FactID    string    `json:"factId"`
	TxID      fact.TxID `json:"txId"`
	Timestamp time.Time `json:"timestamp"`
}

// ToJSON serializes the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FactAppended builds a fact-appended event.
func FactAppended(kind, id string, txID fact.TxID, at time.Time) Event {
	return Event{Type: EventFactAppended, FactKind: kind, FactID: id, TxID: txID, Timestamp: at}
}

// FactRetracted builds a fact-retracted event.
func FactRetracted(id string, txID fact.TxID, at time.Time) Event {
	return Event{Type: EventFactRetracted, FactID: id, TxID: txID, Timestamp: at}
}
