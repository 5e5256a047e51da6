// Package operations implements spec.md §4.11's write-side operation
// surface: for each fact kind, a thin constructor that builds a
// well-formed fact record with a freshly generated id, attaches
// transaction metadata, and calls event-store append atomically. None of
// these do business computation beyond validation — contract state is
// always computed by internal/derive, never cached here.
package operations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/notify"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// Operations wraps an event store with the fact-kind constructors and an
// optional live-notification publisher, mirroring the teacher's
// service-struct-wrapping-a-repository shape (internal/service's
// NewXxxService(repo) constructors) generalized to the single event
// store every fact kind shares.
type Operations struct {
	store     store.EventStore
	publisher notify.EventPublisher
	log       zerolog.Logger
}

// Option configures an Operations instance.
type Option func(*Operations)

// WithPublisher attaches a live-notification publisher; the default is
// notify.NoOpPublisher, matching the teacher's default-no-op pattern.
func WithPublisher(p notify.EventPublisher) Option {
	return func(o *Operations) { o.publisher = p }
}

// New builds an Operations over s, logging through log.
func New(s store.EventStore, log zerolog.Logger, opts ...Option) *Operations {
	o := &Operations{store: s, publisher: notify.NoOpPublisher{}, log: log}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newID() string { return uuid.NewString() }

// append validates every fact, commits the batch, and publishes one
// FactAppended notification per fact on success.
func (o *Operations) append(ctx context.Context, records []store.Record, meta fact.TxMetadata) (fact.TxID, error) {
	if err := meta.Validate(); err != nil {
		return 0, err
	}
	for _, r := range records {
		if v, ok := r.Value.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return 0, err
			}
		}
	}
	txID, err := o.store.Append(ctx, records, meta)
	if err != nil {
		o.log.Error().Err(err).Str("author", meta.Author).Msg("append failed")
		return 0, err
	}
	now := time.Now().UTC()
	for _, r := range records {
		o.publisher.Publish(contractRefOf(r), notify.FactAppended(string(r.Kind), r.ID, txID, now))
	}
	o.log.Debug().Uint64("tx_id", uint64(txID)).Int("fact_count", len(records)).Str("author", meta.Author).Msg("facts appended")
	return txID, nil
}

func contractRefOf(r store.Record) string {
	if ref := fact.ContractRefOf(r.Value); ref != "" {
		return ref
	}
	if c, ok := r.Value.(*fact.Contract); ok {
		return c.ID
	}
	return ""
}

// Retract calls event-store retract_entity with a reason from the
// taxonomy (spec.md §4.11, §7).
func (o *Operations) Retract(ctx context.Context, entityID string, reason fact.ReasonTag, author, note string) (fact.TxID, error) {
	meta := fact.TxMetadata{Author: author, Reason: reason, Note: note}
	if err := meta.Validate(); err != nil {
		return 0, err
	}
	contractID := entityID
	if snap, err := o.store.CurrentSnapshot(ctx); err == nil {
		if rec, ok := snap.Get(entityID); ok {
			if ref := contractRefOf(rec); ref != "" {
				contractID = ref
			}
		}
	}
	txID, err := o.store.RetractEntity(ctx, entityID, meta)
	if err != nil {
		o.log.Error().Err(err).Str("entity_id", entityID).Msg("retract failed")
		return 0, err
	}
	o.publisher.Publish(contractID, notify.FactRetracted(entityID, txID, time.Now().UTC()))
	o.log.Debug().Uint64("tx_id", uint64(txID)).Str("entity_id", entityID).Msg("entity retracted")
	return txID, nil
}
