// Package waterfall implements the priority-ordered obligation allocator
// spec.md §4.4 describes: given every fee and installment a contract
// owes and one lump sum of available money, decide in what order and how
// much of each obligation that money settles. It is a pure function —
// no store, no clock, no side effect — so internal/derive can call it
// fresh on every read instead of trusting a cached "amount paid" field.
package waterfall

import (
	"sort"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
)

// AllocationKind distinguishes a fee allocation from an installment
// allocation in the output list.
type AllocationKind string

const (
	AllocationFee         AllocationKind = "fee"
	AllocationInstallment AllocationKind = "installment"
)

// Allocation is one obligation's share of available funds. ProfitPaid and
// PrincipalPaid are populated only for AllocationInstallment; Seq is the
// installment's sequence number, zero for a fee.
type Allocation struct {
	Kind          AllocationKind
	ID            string
	Seq           int32
	Amount        money.Amount
	ProfitPaid    money.Amount
	PrincipalPaid money.Amount
}

// Result is the allocator's output: the ordered allocation list plus
// whatever of available was left over once every obligation was met.
type Result struct {
	Allocations   []Allocation
	CreditBalance money.Amount
}

// Run allocates available across fees and installments in spec.md §4.4's
// priority order: fees by due-date ascending (stable on ties), then
// installments by seq ascending, profit before principal within each
// installment. fees and installments are not mutated or required to be
// pre-sorted. available must be non-negative; passing a negative amount
// is a caller error the function does not guard against (spec.md §4.4
// "Failure: None").
func Run(fees []*fact.Fee, installments []*fact.Installment, available money.Amount) Result {
	orderedFees := make([]*fact.Fee, len(fees))
	copy(orderedFees, fees)
	sort.SliceStable(orderedFees, func(i, j int) bool {
		return orderedFees[i].DueDate.Before(orderedFees[j].DueDate)
	})

	orderedInstallments := make([]*fact.Installment, len(installments))
	copy(orderedInstallments, installments)
	sort.SliceStable(orderedInstallments, func(i, j int) bool {
		return orderedInstallments[i].Seq < orderedInstallments[j].Seq
	})

	remaining := available
	allocations := make([]Allocation, 0, len(orderedFees)+len(orderedInstallments))

	for _, f := range orderedFees {
		take := money.Min(remaining, f.Amount)
		remaining = remaining.Sub(take)
		allocations = append(allocations, Allocation{
			Kind:   AllocationFee,
			ID:     f.ID,
			Amount: take,
		})
	}

	for _, inst := range orderedInstallments {
		profitTake := money.Min(remaining, inst.ProfitDue)
		remaining = remaining.Sub(profitTake)

		principalTake := money.Min(remaining, inst.PrincipalDue)
		remaining = remaining.Sub(principalTake)

		allocations = append(allocations, Allocation{
			Kind:          AllocationInstallment,
			ID:            inst.ID,
			Seq:           inst.Seq,
			Amount:        profitTake.Add(principalTake),
			ProfitPaid:    profitTake,
			PrincipalPaid: principalTake,
		})
	}

	return Result{Allocations: allocations, CreditBalance: remaining}
}
