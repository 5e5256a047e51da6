// Package document implements spec.md §4.9 and §4.10: building the three
// first-class document-snapshot payloads (clearance letter, statement,
// contract agreement), contradiction detection against a current view,
// supersession, and the signing/contract-signed? derivations.
//
// Payloads are serialized with encoding/json, the same choice
// internal/store/postgres makes for fact payloads: shopspring/decimal and
// money.Date already implement MarshalJSON/UnmarshalJSON with exact
// precision, so the self-describing, round-tripping format spec.md §6
// requires falls out of the project's own types without a dedicated
// serialization library.
package document

import (
	"encoding/json"
	"sort"

	"github.com/dafibh/murabaha-ledger/internal/derive"
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/settlement"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// ClearancePayload is the frozen payload of a clearance-letter snapshot.
type ClearancePayload struct {
	SettlementDate money.Date             `json:"settlement_date"`
	PenaltyDays    int                    `json:"penalty_days"`
	ManualOverride *money.Amount          `json:"manual_override,omitempty"`
	Settlement     *settlement.Settlement `json:"settlement"`
}

// StatementPayload is the frozen payload of a statement snapshot: the
// ContractState derived as-of period-end.
type StatementPayload struct {
	PeriodStart money.Date            `json:"period_start"`
	PeriodEnd   money.Date            `json:"period_end"`
	State       *derive.ContractState `json:"state"`
}

// AgreementPayload is the frozen payload of a contract-agreement
// snapshot: the contract and its fee/installment schedule as asserted at
// generation time.
type AgreementPayload struct {
	Contract     *fact.Contract       `json:"contract"`
	Fees         []*fact.Fee          `json:"fees"`
	Installments []*fact.Installment  `json:"installments"`
}

// BuildClearanceLetter runs calculate_settlement and freezes the result
// as a clearance-letter document-snapshot fact, unassigned an id (the
// write-side operation assigns one).
func BuildClearanceLetter(v store.View, contractID string, settlementDate money.Date, penaltyDays int, manualOverride *money.Amount) (*fact.DocumentSnapshot, error) {
	state, err := derive.Derive(v, contractID, settlementDate)
	if err != nil {
		return nil, err
	}
	s, err := settlement.Calculate(state, settlementDate, penaltyDays, manualOverride)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(ClearancePayload{
		SettlementDate: settlementDate,
		PenaltyDays:    penaltyDays,
		ManualOverride: manualOverride,
		Settlement:     s,
	})
	if err != nil {
		return nil, err
	}
	return &fact.DocumentSnapshot{
		ContractRef: contractID,
		Kind:        fact.DocumentClearanceLetter,
		Payload:     payload,
		Parameters:  map[string]string{"settlement-date": settlementDate.String()},
		GeneratedAt: settlementDate,
	}, nil
}

// BuildStatement freezes the ContractState derived as-of periodEnd as a
// statement document-snapshot fact.
func BuildStatement(v store.View, contractID string, periodStart, periodEnd money.Date) (*fact.DocumentSnapshot, error) {
	state, err := derive.Derive(v, contractID, periodEnd)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(StatementPayload{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		State:       state,
	})
	if err != nil {
		return nil, err
	}
	return &fact.DocumentSnapshot{
		ContractRef: contractID,
		Kind:        fact.DocumentStatement,
		Payload:     payload,
		Parameters:  map[string]string{"period-start": periodStart.String(), "period-end": periodEnd.String()},
		GeneratedAt: periodEnd,
	}, nil
}

// BuildAgreement freezes the contract plus its full fee/installment
// schedule as a contract-agreement document-snapshot fact.
func BuildAgreement(v store.View, contractID string, generatedAt money.Date) (*fact.DocumentSnapshot, error) {
	rec, ok := v.Get(contractID)
	if !ok {
		return nil, &fact.NotFoundError{Kind: string(fact.KindContract), ID: contractID}
	}
	contract, ok := rec.Value.(*fact.Contract)
	if !ok {
		return nil, &fact.ConsistencyError{ContractID: contractID, Detail: "entity is not a contract"}
	}
	fees := castFees(v.ListByContract(fact.KindFee, contractID))
	installments := castInstallments(v.ListByContract(fact.KindInstallment, contractID))
	sort.Slice(installments, func(i, j int) bool { return installments[i].Seq < installments[j].Seq })

	payload, err := json.Marshal(AgreementPayload{Contract: contract, Fees: fees, Installments: installments})
	if err != nil {
		return nil, err
	}
	return &fact.DocumentSnapshot{
		ContractRef: contractID,
		Kind:        fact.DocumentContractAgreement,
		Payload:     payload,
		GeneratedAt: generatedAt,
	}, nil
}

func castFees(recs []store.Record) []*fact.Fee {
	out := make([]*fact.Fee, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.Fee))
	}
	return out
}

func castInstallments(recs []store.Record) []*fact.Installment {
	out := make([]*fact.Installment, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.Installment))
	}
	return out
}
