package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// RateAdjustment is a fact-level update to a contiguous range of
// installments (spec.md §4.8). It records the new values directly;
// history preserves the installments' prior values because the event
// store never deletes an asserted-then-superseded value.
type RateAdjustment struct {
	ID                string
	ContractRef       string
	InstallmentRefs   []string
	NewProfitDue      map[string]money.Amount // installment id -> new profit-due
	NewPrincipalDue   map[string]money.Amount // optional, set only when restructuring
	NewRemainingPrincipal map[string]money.Amount
	Reason            string
}

func (r *RateAdjustment) Validate() error {
	ve := NewValidationError()
	if r.ID == "" {
		ve.Add("rate-adjustment/id", "id is required")
	}
	if r.ContractRef == "" {
		ve.Add("rate-adjustment/contract-ref", "contract reference is required")
	}
	if len(r.InstallmentRefs) == 0 {
		ve.Add("rate-adjustment/installment-refs", "must affect at least one installment")
	}
	for _, ref := range r.InstallmentRefs {
		amt, ok := r.NewProfitDue[ref]
		if !ok {
			ve.Add("rate-adjustment/new-profit-due", "missing new profit-due for "+ref)
			continue
		}
		if money.IsNegative(amt) {
			ve.Add("rate-adjustment/new-profit-due", "must not be negative for "+ref)
		}
	}
	if r.Reason == "" {
		ve.Add("rate-adjustment/reason", "reason is required")
	}
	return ve.OrNil()
}
