package document

import (
	"encoding/json"
	"fmt"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/settlement"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// Contradiction is the output of check_clearance_contradictions (spec.md
// §4.9): a non-zero Delta means facts changed since the snapshot issued,
// legitimately or by correction, and the system surfaces it rather than
// silently trusting the frozen payload.
type Contradiction struct {
	DocumentID string
	Changed    bool
	Delta      map[string]string
}

// CheckClearanceContradictions recomputes a clearance-letter snapshot's
// settlement against the current view and reports any field whose value
// no longer matches what was frozen.
func CheckClearanceContradictions(v store.View, snap *fact.DocumentSnapshot) (*Contradiction, error) {
	if snap.Kind != fact.DocumentClearanceLetter {
		return nil, &fact.ConsistencyError{ContractID: snap.ContractRef, Detail: "contradiction check requires a clearance-letter snapshot"}
	}

	var frozen ClearancePayload
	if err := json.Unmarshal(snap.Payload, &frozen); err != nil {
		return nil, err
	}

	fresh, err := BuildClearanceLetter(v, snap.ContractRef, frozen.SettlementDate, frozen.PenaltyDays, frozen.ManualOverride)
	if err != nil {
		return nil, err
	}
	var current ClearancePayload
	if err := json.Unmarshal(fresh.Payload, &current); err != nil {
		return nil, err
	}

	delta := diffSettlement(frozen.Settlement, current.Settlement)
	return &Contradiction{
		DocumentID: snap.ID,
		Changed:    len(delta) > 0,
		Delta:      delta,
	}, nil
}

func diffSettlement(old, new *settlement.Settlement) map[string]string {
	delta := map[string]string{}
	report := func(field string, a, b fmt.Stringer) {
		if a.String() != b.String() {
			delta[field] = fmt.Sprintf("%s -> %s", a.String(), b.String())
		}
	}
	report("outstanding-principal", old.OutstandingPrincipal, new.OutstandingPrincipal)
	report("accrued-profit", old.AccruedProfit, new.AccruedProfit)
	report("accrued-unpaid-profit", old.AccruedUnpaidProfit, new.AccruedUnpaidProfit)
	report("outstanding-fees", old.OutstandingFees, new.OutstandingFees)
	report("credit-balance", old.CreditBalance, new.CreditBalance)
	report("settlement-amount", old.SettlementAmount, new.SettlementAmount)
	report("refund-due", old.RefundDue, new.RefundDue)
	if old.RateSource != new.RateSource {
		delta["rate-source"] = fmt.Sprintf("%s -> %s", old.RateSource, new.RateSource)
	}
	return delta
}
