// Package memory implements an in-process event store, suitable for
// tests and for embedding the core in a single-process deployment. It is
// the teacher's testutil-mock idiom (internal/testutil/mocks.go) applied
// to the event-sourced store interface instead of a CRUD repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

type logEntry struct {
	txID      fact.TxID
	op        store.Operation
	record    store.Record
	meta      fact.TxMetadata
	committed time.Time
}

// Store is an in-memory, mutex-guarded EventStore. Appends are serialized
// by mu; reads take a read lock just long enough to copy the slices a
// View closes over, so a View itself never blocks a concurrent append.
type Store struct {
	mu      sync.RWMutex
	log     []logEntry
	nextTx  fact.TxID
	current map[string]store.Record // id -> latest asserted record
	index   map[string]string       // unique key -> owner id, for currently asserted facts
	now     func() time.Time
}

// New creates an empty in-memory event store. now defaults to time.Now
// if nil; tests may inject a deterministic clock.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		current: make(map[string]store.Record),
		index:   make(map[string]string),
		now:     now,
	}
}

func (s *Store) Append(_ context.Context, facts []store.Record, meta fact.TxMetadata) (fact.TxID, error) {
	if err := meta.Validate(); err != nil {
		return 0, err
	}
	if len(facts) == 0 {
		return 0, (&fact.ValidationError{}).Add("facts", "batch must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch against the index before committing any of
	// it — spec.md §4.2 "On any integrity violation, the entire batch
	// fails" and §4.3 "rejected appends leave the store untouched."
	tentativeIndex := make(map[string]string, len(s.index))
	for k, v := range s.index {
		tentativeIndex[k] = v
	}
	for _, r := range facts {
		if existing, ok := s.current[r.ID]; ok && existing.Kind != r.Kind {
			return 0, &fact.IntegrityViolationError{Constraint: "entity-kind", Value: r.ID}
		}
		for _, key := range uniqueKeysFor(r) {
			if holder, ok := tentativeIndex[key]; ok && holder != r.ID {
				return 0, &fact.IntegrityViolationError{Constraint: key, Value: r.ID}
			}
			tentativeIndex[key] = r.ID
		}
	}

	txID := s.nextTx + 1
	s.nextTx = txID
	committed := s.now()

	for _, r := range facts {
		if old, ok := s.current[r.ID]; ok {
			for _, key := range uniqueKeysFor(old) {
				delete(s.index, key)
			}
		}
		for _, key := range uniqueKeysFor(r) {
			s.index[key] = r.ID
		}
		s.current[r.ID] = r
		s.log = append(s.log, logEntry{txID: txID, op: store.OpAsserted, record: r, meta: meta, committed: committed})
	}

	return txID, nil
}

func (s *Store) CurrentSnapshot(_ context.Context) (store.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(s.nextTx), nil
}

func (s *Store) AsOf(_ context.Context, instant fact.TxID) (store.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replayLocked(instant), nil
}

func (s *Store) snapshotLocked(asOfTx fact.TxID) store.View {
	records := make(map[string]store.Record, len(s.current))
	for id, r := range s.current {
		records[id] = r
	}
	return &view{records: records, asOfTx: asOfTx}
}

// replayLocked rebuilds the asserted set as of instant by folding the log
// in transaction order, which is the straightforward (if not the fastest)
// way to honor spec.md §4.2's as_of contract without a second mutable
// index to keep in sync.
func (s *Store) replayLocked(instant fact.TxID) store.View {
	records := make(map[string]store.Record)
	for _, e := range s.log {
		if e.txID > instant {
			break
		}
		switch e.op {
		case store.OpAsserted:
			records[e.record.ID] = e.record
		case store.OpRetracted:
			delete(records, e.record.ID)
		}
	}
	return &view{records: records, asOfTx: instant}
}

func (s *Store) History(_ context.Context, entityID string) ([]store.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.HistoryEntry
	for _, e := range s.log {
		if e.record.ID != entityID {
			continue
		}
		out = append(out, store.HistoryEntry{
			Op:        e.op,
			TxID:      e.txID,
			Record:    e.record,
			Meta:      e.meta,
			Committed: e.committed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TxID < out[j].TxID })
	return out, nil
}

func (s *Store) RetractEntity(_ context.Context, entityID string, meta fact.TxMetadata) (fact.TxID, error) {
	if err := meta.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, ok := s.current[entityID]
	if !ok {
		return 0, &fact.NotFoundError{Kind: "entity", ID: entityID}
	}

	toRetract := []store.Record{root}
	for _, childKind := range fact.OwnedChildKinds(root.Kind) {
		for _, r := range s.current {
			if r.Kind != childKind {
				continue
			}
			if contractRefOf(r) == entityID || (root.Kind == fact.KindDocumentSnapshot && documentRefOf(r) == entityID) {
				toRetract = append(toRetract, r)
			}
		}
	}

	txID := s.nextTx + 1
	s.nextTx = txID
	committed := s.now()

	for _, r := range toRetract {
		for _, key := range uniqueKeysFor(r) {
			delete(s.index, key)
		}
		delete(s.current, r.ID)
		s.log = append(s.log, logEntry{txID: txID, op: store.OpRetracted, record: r, meta: meta, committed: committed})
	}

	return txID, nil
}

type view struct {
	records map[string]store.Record
	asOfTx  fact.TxID
}

func (v *view) Get(id string) (store.Record, bool) {
	r, ok := v.records[id]
	return r, ok
}

func (v *view) ListByContract(kind fact.Kind, contractID string) []store.Record {
	var out []store.Record
	for _, r := range v.records {
		if r.Kind != kind {
			continue
		}
		if contractRefOf(r) == contractID {
			out = append(out, r)
		}
	}
	return out
}

func (v *view) ListAll(kind fact.Kind) []store.Record {
	var out []store.Record
	for _, r := range v.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func (v *view) AsOfTxID() fact.TxID { return v.asOfTx }
