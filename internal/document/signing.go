package document

import (
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// ActiveAgreement returns the most recently generated, unsuperseded
// contract-agreement snapshot for contractID, per spec.md §4.9
// supersession: "only the unsuperseded one is considered active."
func ActiveAgreement(v store.View, contractID string) (*fact.DocumentSnapshot, bool) {
	snapshots := v.ListByContract(fact.KindDocumentSnapshot, contractID)
	superseded := make(map[string]bool, len(snapshots))
	var agreements []*fact.DocumentSnapshot
	for _, r := range snapshots {
		snap, ok := r.Value.(*fact.DocumentSnapshot)
		if !ok || snap.Kind != fact.DocumentContractAgreement {
			continue
		}
		agreements = append(agreements, snap)
		if snap.SupersedesRef != "" {
			superseded[snap.SupersedesRef] = true
		}
	}

	var active *fact.DocumentSnapshot
	for _, snap := range agreements {
		if superseded[snap.ID] {
			continue
		}
		if active == nil || snap.GeneratedAt.After(active.GeneratedAt) {
			active = snap
		}
	}
	if active == nil {
		return nil, false
	}
	return active, true
}

// ContractSigned implements contract_signed?(view, contract-id) (spec.md
// §4.10): true when every authorized signatory has at least one
// non-retracted signing on the latest active contract-agreement. Since
// store.View only ever surfaces currently-asserted (non-retracted)
// records, a retracted signing or document simply disappears from the
// view and this derivation naturally drops to false, satisfying spec.md
// §8 invariant 8.
func ContractSigned(v store.View, contractID string) (bool, error) {
	rec, ok := v.Get(contractID)
	if !ok {
		return false, &fact.NotFoundError{Kind: string(fact.KindContract), ID: contractID}
	}
	contract, ok := rec.Value.(*fact.Contract)
	if !ok {
		return false, &fact.ConsistencyError{ContractID: contractID, Detail: "entity is not a contract"}
	}
	if len(contract.AuthorizedSignatories) == 0 {
		return true, nil
	}

	agreement, ok := ActiveAgreement(v, contractID)
	if !ok {
		return false, nil
	}

	signed := make(map[string]bool)
	for _, r := range v.ListAll(fact.KindSigning) {
		s, ok := r.Value.(*fact.Signing)
		if !ok || s.DocumentRef != agreement.ID {
			continue
		}
		signed[s.SignatoryRef] = true
	}

	for _, party := range contract.AuthorizedSignatories {
		if !signed[party] {
			return false, nil
		}
	}
	return true, nil
}
