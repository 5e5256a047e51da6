package memory

import (
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// uniqueKeysFor, contractRefOf and documentRefOf wrap fact's shared
// identity helpers over a store.Record, so the constraint logic itself
// lives in one place shared with internal/store/postgres.
func uniqueKeysFor(r store.Record) []string { return fact.UniqueKeysFor(r.Value) }

func contractRefOf(r store.Record) string { return fact.ContractRefOf(r.Value) }

func documentRefOf(r store.Record) string { return fact.DocumentRefOf(r.Value) }
