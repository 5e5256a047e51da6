// Package funding implements funding_breakdown, spec.md §6's operation-
// surface derivation reconciling how a contract's principal was actually
// disbursed against what the contract records as due, independent of the
// payment-side waterfall (internal/waterfall, internal/derive).
package funding

import (
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// Breakdown is funding_breakdown's output: the disbursement-side
// reconciliation for one contract (spec.md §8 Scenario D).
type Breakdown struct {
	Principal      money.Amount
	GrossFunded    money.Amount
	Refunded       money.Amount
	ExcessReturned money.Amount
	NetFunded      money.Amount
	Balanced       bool
}

// Derive reconciles every disbursement fact owned by contractID against
// the contract's principal: funding disbursements less whatever came
// back as a refund or an excess-return must net to exactly the
// principal. excess-return disbursements never enter the waterfall total
// (internal/derive), but they do enter this reconciliation, since the
// money genuinely moved.
func Derive(v store.View, contractID string) (*Breakdown, error) {
	rec, ok := v.Get(contractID)
	if !ok {
		return nil, &fact.NotFoundError{Kind: string(fact.KindContract), ID: contractID}
	}
	contract, ok := rec.Value.(*fact.Contract)
	if !ok {
		return nil, &fact.ConsistencyError{ContractID: contractID, Detail: "entity is not a contract"}
	}

	gross, refunded, excessReturned := money.Zero, money.Zero, money.Zero
	for _, r := range v.ListByContract(fact.KindDisbursement, contractID) {
		d, ok := r.Value.(*fact.Disbursement)
		if !ok {
			continue
		}
		switch d.Type {
		case fact.DisbursementFunding:
			gross = gross.Add(d.Amount)
		case fact.DisbursementRefund:
			refunded = refunded.Add(d.Amount)
		case fact.DisbursementExcessReturn:
			excessReturned = excessReturned.Add(d.Amount)
		}
	}

	netFunded := gross.Sub(refunded).Sub(excessReturned)

	return &Breakdown{
		Principal:      contract.Principal,
		GrossFunded:    gross,
		Refunded:       refunded,
		ExcessReturned: excessReturned,
		NetFunded:      netFunded,
		Balanced:       netFunded.Equal(contract.Principal),
	}, nil
}
