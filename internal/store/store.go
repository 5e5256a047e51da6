// Package store defines the event store contract required by spec.md §4.2
// and §6: the core's sole external dependency. Two adapters satisfy it —
// internal/store/memory (for tests and small deployments) and
// internal/store/postgres (backed by pgx, for production).
package store

import (
	"context"
	"time"

	"github.com/dafibh/murabaha-ledger/internal/fact"
)

// Record is one fact envelope: an entity id, its kind tag, and the
// concrete, already-validated fact value (one of the fact pointer types
// such as *fact.Contract or *fact.Payment). Using `any` here is the Go-idiomatic stand-in for the
// source system's runtime keyword tagging — every derivation pathway
// recovers the concrete type with a type switch over Kind, which the
// compiler can be asked to check for exhaustiveness in review.
type Record struct {
	ID    string
	Kind  fact.Kind
	Value any
}

// Operation distinguishes an assert from a retract in a History result.
type Operation string

const (
	OpAsserted  Operation = "asserted"
	OpRetracted Operation = "retracted"
)

// HistoryEntry is one asserted/retracted transition for an entity,
// ordered by transaction id (spec.md §4.2 history).
type HistoryEntry struct {
	Op        Operation
	TxID      fact.TxID
	Record    Record
	Meta      fact.TxMetadata
	Committed time.Time
}

// View is a reader over a point-in-time set of asserted facts. Views are
// immutable and lock-free to read — spec.md §5 "Reads are lock-free
// against a point-in-time view."
type View interface {
	// Get returns the currently asserted record for id, if any.
	Get(id string) (Record, bool)

	// ListByContract returns every currently asserted record of kind
	// owned (directly) by contractID, in no particular order.
	ListByContract(kind fact.Kind, contractID string) []Record

	// ListAll returns every currently asserted record of kind.
	ListAll(kind fact.Kind) []Record

	// AsOfTxID reports the transaction id this view is pinned to.
	AsOfTxID() fact.TxID
}

// EventStore is the append-only log with history required by spec.md
// §4.2. append is linearizable and a batch is atomic (spec.md §5): either
// every fact in the batch is visible to subsequent reads, or none is.
type EventStore interface {
	// Append atomically commits a batch of facts plus metadata. On any
	// integrity violation the entire batch fails and the store is left
	// untouched.
	Append(ctx context.Context, facts []Record, meta fact.TxMetadata) (fact.TxID, error)

	// CurrentSnapshot returns a reader over the currently asserted facts.
	CurrentSnapshot(ctx context.Context) (View, error)

	// AsOf returns a reader for the facts asserted as of a prior
	// transaction id, inclusive.
	AsOf(ctx context.Context, instant fact.TxID) (View, error)

	// History returns the ordered asserted/retracted transitions for an
	// entity id.
	History(ctx context.Context, entityID string) ([]HistoryEntry, error)

	// RetractEntity marks all attributes of the entity as retracted as of
	// the returned transaction id. Component-owned children (per
	// fact.OwnedChildKinds) cascade. Returns *fact.NotFoundError if the
	// entity id is unknown.
	RetractEntity(ctx context.Context, entityID string, meta fact.TxMetadata) (fact.TxID, error)
}
