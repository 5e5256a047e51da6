// Package derive computes contract-state: the structurally-complete,
// always-freshly-computed view spec.md §4.5 describes. Nothing here is
// ever cached — every call walks the facts currently (or as-of)
// asserted in a store.View and runs them back through
// internal/waterfall, honoring invariant 5 ("status is never stored").
//
// An installment that is not fully paid counts as overdue when its
// due-date is strictly before the as-of date; there is no grace period.
package derive

import (
	"fmt"
	"sort"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/store"
	"github.com/dafibh/murabaha-ledger/internal/waterfall"
)

// FeeStatus is the closed set of derived fee statuses (spec.md §4.5 step 4).
type FeeStatus string

const (
	FeeStatusPaid   FeeStatus = "paid"
	FeeStatusUnpaid FeeStatus = "unpaid"
)

// InstallmentStatus is the closed set of derived installment statuses.
type InstallmentStatus string

const (
	InstallmentStatusPaid      InstallmentStatus = "paid"
	InstallmentStatusPartial   InstallmentStatus = "partial"
	InstallmentStatusOverdue   InstallmentStatus = "overdue"
	InstallmentStatusScheduled InstallmentStatus = "scheduled"
)

// FeeView is a fee enriched with its derived allocation.
type FeeView struct {
	Fee         *fact.Fee
	Paid        money.Amount
	Outstanding money.Amount
	Status      FeeStatus
}

// InstallmentView is an installment enriched with its derived allocation.
type InstallmentView struct {
	Installment   *fact.Installment
	ProfitPaid    money.Amount
	PrincipalPaid money.Amount
	TotalPaid     money.Amount
	Outstanding   money.Amount
	Status        InstallmentStatus
}

// ContractState is the structurally-complete view spec.md §4.5 step 7
// requires, suitable for both interactive use and document snapshotting.
type ContractState struct {
	Contract     *fact.Contract
	Borrower     *fact.Party
	AsOf         fact.TxID
	Fees         []FeeView
	Installments []InstallmentView

	TotalFeesDue       money.Amount
	TotalFeesPaid      money.Amount
	TotalPrincipalDue  money.Amount
	TotalPrincipalPaid money.Amount
	TotalProfitDue     money.Amount
	TotalProfitPaid    money.Amount
	TotalOutstanding   money.Amount

	WaterfallTotal money.Amount
	CreditBalance  money.Amount
	DepositHeld    money.Amount

	LinkedContracts []string // other contracts referencing this one via facility, payment source, or deposit transfer
}

// Derive implements spec.md §4.5's full pipeline: query-facts,
// compute-waterfall-total, waterfall, enrich, aggregate.
func Derive(v store.View, contractID string, asOf money.Date) (*ContractState, error) {
	rec, ok := v.Get(contractID)
	if !ok {
		return nil, &fact.NotFoundError{Kind: string(fact.KindContract), ID: contractID}
	}
	contract, ok := rec.Value.(*fact.Contract)
	if !ok {
		return nil, &fact.ConsistencyError{ContractID: contractID, Detail: fmt.Sprintf("entity %s is not a contract", contractID)}
	}

	installments := castInstallments(v.ListByContract(fact.KindInstallment, contractID))
	if len(installments) == 0 {
		return nil, &fact.ConsistencyError{ContractID: contractID, Detail: "contract has no installment schedule"}
	}
	sort.Slice(installments, func(i, j int) bool { return installments[i].Seq < installments[j].Seq })

	fees := castFees(v.ListByContract(fact.KindFee, contractID))
	payments := castPayments(v.ListByContract(fact.KindPayment, contractID))
	disbursements := castDisbursements(v.ListByContract(fact.KindDisbursement, contractID))
	deposits := castDeposits(v.ListByContract(fact.KindDepositMovement, contractID))
	allocations := castPrincipalAllocations(v.ListByContract(fact.KindPrincipalAllocation, contractID))

	rateAdjustments := castRateAdjustments(v.ListByContract(fact.KindRateAdjustment, contractID))
	installments, err := applyRateAdjustments(contractID, installments, rateAdjustments)
	if err != nil {
		return nil, err
	}

	w := computeWaterfallTotal(payments, allocations, deposits, disbursements)

	result := waterfall.Run(fees, installments, w)

	feeViews, totalFeesDue, totalFeesPaid := enrichFees(fees, result.Allocations)
	instViews, principalDue, principalPaid, profitDue, profitPaid := enrichInstallments(installments, result.Allocations, asOf)

	depositHeld := computeDepositHeld(deposits)

	outstanding := money.Sum(totalFeesDue, principalDue, profitDue).Sub(money.Sum(totalFeesPaid, principalPaid, profitPaid))

	var borrower *fact.Party
	if brec, ok := v.Get(contract.BorrowerRef); ok {
		if p, ok := brec.Value.(*fact.Party); ok {
			borrower = p
		}
	}

	return &ContractState{
		Contract:           contract,
		Borrower:           borrower,
		AsOf:               v.AsOfTxID(),
		Fees:               feeViews,
		Installments:       instViews,
		TotalFeesDue:       totalFeesDue,
		TotalFeesPaid:      totalFeesPaid,
		TotalPrincipalDue:  principalDue,
		TotalPrincipalPaid: principalPaid,
		TotalProfitDue:     profitDue,
		TotalProfitPaid:    profitPaid,
		TotalOutstanding:   money.MaxZero(outstanding),
		WaterfallTotal:     w,
		CreditBalance:      result.CreditBalance,
		DepositHeld:        depositHeld,
		LinkedContracts:    linkedContracts(contract, payments, deposits),
	}, nil
}

// GetLinkedContracts implements spec.md §6's get_linked_contracts as a
// standalone operation-surface entry point, for callers that want the
// relation without paying for a full contract-state derivation.
func GetLinkedContracts(v store.View, contractID string) ([]string, error) {
	rec, ok := v.Get(contractID)
	if !ok {
		return nil, &fact.NotFoundError{Kind: string(fact.KindContract), ID: contractID}
	}
	contract, ok := rec.Value.(*fact.Contract)
	if !ok {
		return nil, &fact.ConsistencyError{ContractID: contractID, Detail: fmt.Sprintf("entity %s is not a contract", contractID)}
	}
	payments := castPayments(v.ListByContract(fact.KindPayment, contractID))
	deposits := castDeposits(v.ListByContract(fact.KindDepositMovement, contractID))
	return linkedContracts(contract, payments, deposits), nil
}

// computeWaterfallTotal implements spec.md §4.5 step 2: W = payments +
// principal-allocations + offset-deposits − refund-disbursements.
// excess-return and funding disbursements, and received/refund/transfer
// deposits, do not enter W.
func computeWaterfallTotal(payments []*fact.Payment, allocations []*fact.PrincipalAllocation, deposits []*fact.DepositMovement, disbursements []*fact.Disbursement) money.Amount {
	total := money.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	for _, d := range deposits {
		if d.Type == fact.DepositOffset {
			total = total.Add(d.Amount)
		}
	}
	for _, d := range disbursements {
		if d.Type == fact.DisbursementRefund {
			total = total.Sub(d.Amount)
		}
	}
	return total
}

// computeDepositHeld implements spec.md §4.5 step 5.
func computeDepositHeld(deposits []*fact.DepositMovement) money.Amount {
	held := money.Zero
	for _, d := range deposits {
		switch d.Type {
		case fact.DepositReceived, fact.DepositTransferIn:
			held = held.Add(d.Amount)
		case fact.DepositRefund, fact.DepositOffset, fact.DepositTransferOut:
			held = held.Sub(d.Amount)
		}
	}
	return held
}

func enrichFees(fees []*fact.Fee, allocations []waterfall.Allocation) ([]FeeView, money.Amount, money.Amount) {
	paidByID := make(map[string]money.Amount, len(allocations))
	for _, a := range allocations {
		if a.Kind == waterfall.AllocationFee {
			paidByID[a.ID] = a.Amount
		}
	}

	views := make([]FeeView, 0, len(fees))
	totalDue, totalPaid := money.Zero, money.Zero
	for _, f := range fees {
		paid := paidByID[f.ID]
		status := FeeStatusUnpaid
		if paid.GreaterThanOrEqual(f.Amount) {
			status = FeeStatusPaid
		}
		views = append(views, FeeView{
			Fee:         f,
			Paid:        paid,
			Outstanding: money.MaxZero(f.Amount.Sub(paid)),
			Status:      status,
		})
		totalDue = totalDue.Add(f.Amount)
		totalPaid = totalPaid.Add(paid)
	}
	return views, totalDue, totalPaid
}

func enrichInstallments(installments []*fact.Installment, allocations []waterfall.Allocation, asOf money.Date) ([]InstallmentView, money.Amount, money.Amount, money.Amount, money.Amount) {
	allocByID := make(map[string]waterfall.Allocation, len(allocations))
	for _, a := range allocations {
		if a.Kind == waterfall.AllocationInstallment {
			allocByID[a.ID] = a
		}
	}

	views := make([]InstallmentView, 0, len(installments))
	principalDue, principalPaid, profitDue, profitPaid := money.Zero, money.Zero, money.Zero, money.Zero
	for _, inst := range installments {
		a := allocByID[inst.ID]
		totalPaid := a.ProfitPaid.Add(a.PrincipalPaid)
		totalDue := inst.TotalDue()

		var status InstallmentStatus
		switch {
		case totalPaid.GreaterThanOrEqual(totalDue):
			status = InstallmentStatusPaid
		case totalPaid.IsPositive():
			status = InstallmentStatusPartial
		case totalPaid.IsZero() && inst.DueDate.Before(asOf):
			status = InstallmentStatusOverdue
		default:
			status = InstallmentStatusScheduled
		}

		views = append(views, InstallmentView{
			Installment:   inst,
			ProfitPaid:    a.ProfitPaid,
			PrincipalPaid: a.PrincipalPaid,
			TotalPaid:     totalPaid,
			Outstanding:   money.MaxZero(totalDue.Sub(totalPaid)),
			Status:        status,
		})

		principalDue = principalDue.Add(inst.PrincipalDue)
		principalPaid = principalPaid.Add(a.PrincipalPaid)
		profitDue = profitDue.Add(inst.ProfitDue)
		profitPaid = profitPaid.Add(a.ProfitPaid)
	}
	return views, principalDue, principalPaid, profitDue, profitPaid
}

func linkedContracts(c *fact.Contract, payments []*fact.Payment, deposits []*fact.DepositMovement) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ref string) {
		if ref == "" || ref == c.ID || seen[ref] {
			return
		}
		seen[ref] = true
		out = append(out, ref)
	}
	add(c.FacilityRef)
	for _, p := range payments {
		add(p.SourceContractRef)
	}
	for _, d := range deposits {
		add(d.PairedContractRef)
	}
	sort.Strings(out)
	return out
}

func castInstallments(recs []store.Record) []*fact.Installment {
	out := make([]*fact.Installment, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.Installment))
	}
	return out
}

func castFees(recs []store.Record) []*fact.Fee {
	out := make([]*fact.Fee, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.Fee))
	}
	return out
}

func castPayments(recs []store.Record) []*fact.Payment {
	out := make([]*fact.Payment, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.Payment))
	}
	return out
}

func castDisbursements(recs []store.Record) []*fact.Disbursement {
	out := make([]*fact.Disbursement, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.Disbursement))
	}
	return out
}

func castDeposits(recs []store.Record) []*fact.DepositMovement {
	out := make([]*fact.DepositMovement, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.DepositMovement))
	}
	return out
}

func castPrincipalAllocations(recs []store.Record) []*fact.PrincipalAllocation {
	out := make([]*fact.PrincipalAllocation, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.PrincipalAllocation))
	}
	return out
}

func castRateAdjustments(recs []store.Record) []*fact.RateAdjustment {
	out := make([]*fact.RateAdjustment, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.(*fact.RateAdjustment))
	}
	return out
}

// applyRateAdjustments implements spec.md §4.8's "subsequent reads
// derive with the new values": an installment's profit-due (and, when
// present, principal-due and remaining-principal) is overridden by
// whichever non-retracted rate adjustment references it. The original
// fact is never mutated in place — a copy carries the overridden values
// so the asserted fact and its history stay exactly as recorded.
// Two still-asserted rate adjustments naming the same installment is a
// modeling error this function refuses to arbitrate; it surfaces as a
// ConsistencyError rather than silently picking one.
func applyRateAdjustments(contractID string, installments []*fact.Installment, adjustments []*fact.RateAdjustment) ([]*fact.Installment, error) {
	if len(adjustments) == 0 {
		return installments, nil
	}

	owner := make(map[string]string, len(installments))
	newProfitDue := make(map[string]money.Amount)
	newPrincipalDue := make(map[string]money.Amount)
	newRemainingPrincipal := make(map[string]money.Amount)
	for _, adj := range adjustments {
		for _, ref := range adj.InstallmentRefs {
			if prior, ok := owner[ref]; ok && prior != adj.ID {
				return nil, &fact.ConsistencyError{ContractID: contractID, Detail: "installment " + ref + " is named by more than one rate adjustment"}
			}
			owner[ref] = adj.ID
			if v, ok := adj.NewProfitDue[ref]; ok {
				newProfitDue[ref] = v
			}
			if v, ok := adj.NewPrincipalDue[ref]; ok {
				newPrincipalDue[ref] = v
			}
			if v, ok := adj.NewRemainingPrincipal[ref]; ok {
				newRemainingPrincipal[ref] = v
			}
		}
	}

	out := make([]*fact.Installment, len(installments))
	for i, inst := range installments {
		if _, touched := owner[inst.ID]; !touched {
			out[i] = inst
			continue
		}
		adjusted := *inst
		if v, ok := newProfitDue[inst.ID]; ok {
			adjusted.ProfitDue = v
		}
		if v, ok := newPrincipalDue[inst.ID]; ok {
			adjusted.PrincipalDue = v
		}
		if v, ok := newRemainingPrincipal[inst.ID]; ok {
			adjusted.RemainingPrincipal = v
		}
		out[i] = &adjusted
	}
	return out, nil
}
