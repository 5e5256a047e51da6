package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Installment is a scheduled repayment line (spec.md §3 Installment
// entity). It is mutable only as a contractual fact change — a rate
// adjustment or restructure — never as a payment-driven status change;
// status is always derived (spec.md invariant 5).
type Installment struct {
	ID                string
	ContractRef       string
	Seq               int32
	DueDate           money.Date
	PrincipalDue      money.Amount
	ProfitDue         money.Amount
	RemainingPrincipal money.Amount
}

func (i *Installment) Validate() error {
	ve := NewValidationError()
	if i.ID == "" {
		ve.Add("installment/id", "id is required")
	}
	if i.ContractRef == "" {
		ve.Add("installment/contract-ref", "contract reference is required")
	}
	if i.Seq < 1 {
		ve.Add("installment/seq", "must be at least 1")
	}
	if money.IsNegative(i.PrincipalDue) {
		ve.Add("installment/principal-due", "must not be negative")
	}
	if money.IsNegative(i.ProfitDue) {
		ve.Add("installment/profit-due", "must not be negative")
	}
	if money.IsNegative(i.RemainingPrincipal) {
		ve.Add("installment/remaining-principal", "must not be negative")
	}
	return ve.OrNil()
}

// TotalDue is the installment's full profit-plus-principal obligation.
func (i *Installment) TotalDue() money.Amount {
	return i.ProfitDue.Add(i.PrincipalDue)
}

// ValidateSchedule checks spec.md invariants 2 and 3 across a contract's
// full installment set: principal-sum equals the contract principal, seq
// values are the contiguous range 1..N, and due-date is monotonically
// non-decreasing in seq. installments must already be sorted by Seq.
func ValidateSchedule(principal money.Amount, installments []*Installment) error {
	ve := NewValidationError()
	if len(installments) == 0 {
		ve.Add("installment/seq", "schedule must contain at least one installment")
		return ve.OrNil()
	}
	sum := money.Zero
	for idx, inst := range installments {
		wantSeq := int32(idx + 1)
		if inst.Seq != wantSeq {
			ve.Add("installment/seq", "seq values must form the contiguous range 1..N")
		}
		if idx > 0 && inst.DueDate.Before(installments[idx-1].DueDate) {
			ve.Add("installment/due-date", "due-date must be monotonically non-decreasing in seq")
		}
		sum = sum.Add(inst.PrincipalDue)
	}
	if !sum.Equal(principal) {
		ve.Add("contract/principal", "sum of installment principal-due must equal contract principal")
	}
	return ve.OrNil()
}
