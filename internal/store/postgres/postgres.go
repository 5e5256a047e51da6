// Package postgres implements store.EventStore over PostgreSQL via pgx.
// It is the production adapter for spec.md §4.2 and §6; internal/store/
// memory covers tests and small deployments. The teacher's repository
// layer (internal/repository/postgres) used sqlc-generated queries over a
// normalized per-feature schema; this adapter is hand-written directly
// against pgx/pgxpool because the fact store has exactly one physical
// shape (an append-only fact log plus a live-index mirror) regardless of
// which of the twelve fact kinds is flowing through it.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// RateLimitedError is returned by Append when the calling author has
// exceeded its write budget (see writeLimiter).
type RateLimitedError struct {
	Author string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("write rate limit exceeded for author %q", e.Author)
}

// Store is a pgx-backed store.EventStore.
type Store struct {
	pool    *pgxpool.Pool
	log     zerolog.Logger
	limiter *writeLimiter
}

// Option configures a Store.
type Option func(*Store)

// WithWriteLimit overrides the default per-author write throttle.
func WithWriteLimit(writesPerMinute, burstSize int) Option {
	return func(s *Store) { s.limiter = newWriteLimiter(writesPerMinute, burstSize) }
}

// New wraps pool as a store.EventStore. Call Migrate once per database
// before using it.
func New(pool *pgxpool.Pool, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		pool:    pool,
		log:     log.With().Str("component", "store/postgres").Logger(),
		limiter: newWriteLimiter(defaultWritesPerMinute, defaultBurstSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the write limiter's background sweep goroutine. It does
// not close the pool, which the caller owns.
func (s *Store) Close() {
	s.limiter.Close()
}

func (s *Store) Append(ctx context.Context, facts []store.Record, meta fact.TxMetadata) (fact.TxID, error) {
	if err := meta.Validate(); err != nil {
		return 0, err
	}
	if len(facts) == 0 {
		return 0, (&fact.ValidationError{}).Add("facts", "batch must not be empty")
	}
	if !s.limiter.allow(meta.Author) {
		return 0, &RateLimitedError{Author: meta.Author}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	txID, err := s.insertTransaction(ctx, tx, meta)
	if err != nil {
		return 0, err
	}

	for _, r := range facts {
		var existingKind string
		err := tx.QueryRow(ctx, `SELECT kind FROM current_facts WHERE id = $1`, r.ID).Scan(&existingKind)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// new entity; nothing to reconcile
		case err != nil:
			return 0, fmt.Errorf("postgres: lookup current fact %s: %w", r.ID, err)
		case existingKind != string(r.Kind):
			return 0, &fact.IntegrityViolationError{Constraint: "entity-kind", Value: r.ID}
		}

		for _, key := range fact.UniqueKeysFor(r.Value) {
			var owner string
			err := tx.QueryRow(ctx, `SELECT owner_id FROM fact_unique_keys WHERE key = $1`, key).Scan(&owner)
			if err == nil && owner != r.ID {
				return 0, &fact.IntegrityViolationError{Constraint: key, Value: r.ID}
			}
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return 0, fmt.Errorf("postgres: lookup unique key %s: %w", key, err)
			}
		}

		payload, err := encodePayload(r.Value)
		if err != nil {
			return 0, fmt.Errorf("postgres: encode %s: %w", r.ID, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO facts (tx_id, id, kind, op, payload) VALUES ($1, $2, $3, 'asserted', $4)`,
			txID, r.ID, string(r.Kind), payload,
		); err != nil {
			return 0, fmt.Errorf("postgres: insert fact %s: %w", r.ID, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO current_facts (id, kind, payload, tx_id) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind, payload = EXCLUDED.payload, tx_id = EXCLUDED.tx_id
		`, r.ID, string(r.Kind), payload, txID); err != nil {
			return 0, fmt.Errorf("postgres: upsert current fact %s: %w", r.ID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM fact_unique_keys WHERE owner_id = $1`, r.ID); err != nil {
			return 0, fmt.Errorf("postgres: clear stale unique keys for %s: %w", r.ID, err)
		}
		for _, key := range fact.UniqueKeysFor(r.Value) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO fact_unique_keys (key, owner_id) VALUES ($1, $2)`,
				key, r.ID,
			); err != nil {
				return 0, fmt.Errorf("postgres: claim unique key %s: %w", key, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	s.log.Debug().Uint64("tx_id", uint64(txID)).Int("facts", len(facts)).Str("author", meta.Author).Msg("committed fact batch")
	return txID, nil
}

func (s *Store) insertTransaction(ctx context.Context, tx pgx.Tx, meta fact.TxMetadata) (fact.TxID, error) {
	var txID fact.TxID
	err := tx.QueryRow(ctx, `
		INSERT INTO transactions (author, reason, note, corrects, original_date, migrated_from)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING tx_id
	`, meta.Author, string(meta.Reason), meta.Note, meta.Corrects, meta.OriginalDate, meta.MigratedFrom).Scan(&txID)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert transaction: %w", err)
	}
	return txID, nil
}

func (s *Store) CurrentSnapshot(ctx context.Context) (store.View, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, kind, payload FROM current_facts`)
	if err != nil {
		return nil, fmt.Errorf("postgres: current snapshot: %w", err)
	}
	defer rows.Close()

	records := make(map[string]store.Record)
	var maxTx fact.TxID
	for rows.Next() {
		var id, kindStr string
		var payload []byte
		if err := rows.Scan(&id, &kindStr, &payload); err != nil {
			return nil, fmt.Errorf("postgres: scan current fact: %w", err)
		}
		kind := fact.Kind(kindStr)
		v, err := decodePayload(kind, payload)
		if err != nil {
			return nil, err
		}
		records[id] = store.Record{ID: id, Kind: kind, Value: v}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(tx_id), 0) FROM transactions`).Scan(&maxTx); err != nil {
		return nil, fmt.Errorf("postgres: current tx watermark: %w", err)
	}
	return &view{records: records, asOfTx: maxTx}, nil
}

// AsOf replays the log up to and including instant via a DISTINCT ON
// query: the latest row per entity id at or before instant, then filters
// out retracted entities. This keeps the "as of" contract honest without
// needing a second mutable index per historical point.
func (s *Store) AsOf(ctx context.Context, instant fact.TxID) (store.View, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (id) id, kind, op, payload
		FROM facts
		WHERE tx_id <= $1
		ORDER BY id, tx_id DESC
	`, instant)
	if err != nil {
		return nil, fmt.Errorf("postgres: as-of query: %w", err)
	}
	defer rows.Close()

	records := make(map[string]store.Record)
	for rows.Next() {
		var id, kindStr, op string
		var payload []byte
		if err := rows.Scan(&id, &kindStr, &op, &payload); err != nil {
			return nil, fmt.Errorf("postgres: scan as-of fact: %w", err)
		}
		if store.Operation(op) == store.OpRetracted {
			continue
		}
		kind := fact.Kind(kindStr)
		v, err := decodePayload(kind, payload)
		if err != nil {
			return nil, err
		}
		records[id] = store.Record{ID: id, Kind: kind, Value: v}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &view{records: records, asOfTx: instant}, nil
}

func (s *Store) History(ctx context.Context, entityID string) ([]store.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT f.tx_id, f.kind, f.op, f.payload, t.author, t.reason, t.note, t.corrects, t.original_date, t.migrated_from, t.committed_at
		FROM facts f
		JOIN transactions t ON t.tx_id = f.tx_id
		WHERE f.id = $1
		ORDER BY f.tx_id ASC
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("postgres: history query: %w", err)
	}
	defer rows.Close()

	var out []store.HistoryEntry
	for rows.Next() {
		var (
			txID                     fact.TxID
			kindStr, op              string
			payload                  []byte
			author, reason           string
			note, corrects, migrated string
			originalDate             *time.Time
			committed                time.Time
		)
		if err := rows.Scan(&txID, &kindStr, &op, &payload, &author, &reason, &note, &corrects, &originalDate, &migrated, &committed); err != nil {
			return nil, fmt.Errorf("postgres: scan history row: %w", err)
		}
		kind := fact.Kind(kindStr)
		var v any
		if len(payload) > 0 {
			v, err = decodePayload(kind, payload)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, store.HistoryEntry{
			Op:   store.Operation(op),
			TxID: txID,
			Record: store.Record{
				ID:    entityID,
				Kind:  kind,
				Value: v,
			},
			Meta: fact.TxMetadata{
				Author:       author,
				Reason:       fact.ReasonTag(reason),
				Note:         note,
				Corrects:     corrects,
				OriginalDate: originalDate,
				MigratedFrom: migrated,
			},
			Committed: committed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) RetractEntity(ctx context.Context, entityID string, meta fact.TxMetadata) (fact.TxID, error) {
	if err := meta.Validate(); err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var kindStr string
	var payload []byte
	err = tx.QueryRow(ctx, `SELECT kind, payload FROM current_facts WHERE id = $1`, entityID).Scan(&kindStr, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &fact.NotFoundError{Kind: "entity", ID: entityID}
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: lookup entity to retract: %w", err)
	}
	rootKind := fact.Kind(kindStr)

	toRetract := map[string]fact.Kind{entityID: rootKind}
	for _, childKind := range fact.OwnedChildKinds(rootKind) {
		rows, err := tx.Query(ctx, `SELECT id, payload FROM current_facts WHERE kind = $1`, string(childKind))
		if err != nil {
			return 0, fmt.Errorf("postgres: list owned %s: %w", childKind, err)
		}
		for rows.Next() {
			var childID string
			var childPayload []byte
			if err := rows.Scan(&childID, &childPayload); err != nil {
				rows.Close()
				return 0, fmt.Errorf("postgres: scan owned %s: %w", childKind, err)
			}
			v, err := decodePayload(childKind, childPayload)
			if err != nil {
				rows.Close()
				return 0, err
			}
			owner := fact.ContractRefOf(v)
			if rootKind == fact.KindDocumentSnapshot {
				owner = fact.DocumentRefOf(v)
			}
			if owner == entityID {
				toRetract[childID] = childKind
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return 0, err
		}
	}

	txID, err := s.insertTransaction(ctx, tx, meta)
	if err != nil {
		return 0, err
	}

	for id, k := range toRetract {
		if _, err := tx.Exec(ctx,
			`INSERT INTO facts (tx_id, id, kind, op, payload) VALUES ($1, $2, $3, 'retracted', NULL)`,
			txID, id, string(k),
		); err != nil {
			return 0, fmt.Errorf("postgres: insert retraction for %s: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM current_facts WHERE id = $1`, id); err != nil {
			return 0, fmt.Errorf("postgres: delete current fact %s: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM fact_unique_keys WHERE owner_id = $1`, id); err != nil {
			return 0, fmt.Errorf("postgres: free unique keys for %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit retraction: %w", err)
	}
	s.log.Debug().Uint64("tx_id", uint64(txID)).Str("entity_id", entityID).Int("cascaded", len(toRetract)-1).Msg("retracted entity")
	return txID, nil
}
