package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// PrincipalAllocation records principal-funded settlement of waterfall
// obligations at origination (spec.md §3 Principal allocation entity). It
// enters the waterfall total as an inflow, the same as a payment.
type PrincipalAllocation struct {
	ID          string
	ContractRef string
	Amount      money.Amount
	Date        money.Date
}

func (p *PrincipalAllocation) Validate() error {
	ve := NewValidationError()
	if p.ID == "" {
		ve.Add("principal-allocation/id", "id is required")
	}
	if p.ContractRef == "" {
		ve.Add("principal-allocation/contract-ref", "contract reference is required")
	}
	if !money.IsPositive(p.Amount) {
		ve.Add("principal-allocation/amount", "must be positive")
	}
	return ve.OrNil()
}
