package postgres

import (
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// view is a snapshot already materialized into memory by the query that
// built it (CurrentSnapshot or AsOf); it does not touch the pool again.
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
		if r.Kind == kind && fact.ContractRefOf(r.Value) == contractID {
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
