package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Fee is a one-off obligation attached to a contract (spec.md §3 Fee
// entity), created at boarding or later.
type Fee struct {
	ID          string
	ContractRef string
	Type        FeeType
	Amount      money.Amount
	DueDate     money.Date
}

func (f *Fee) Validate() error {
	ve := NewValidationError()
	if f.ID == "" {
		ve.Add("fee/id", "id is required")
	}
	if f.ContractRef == "" {
		ve.Add("fee/contract-ref", "contract reference is required")
	}
	if !f.Type.Valid() {
		ve.Add("fee/fee-type", "unrecognized fee type")
	}
	if !money.IsPositive(f.Amount) {
		ve.Add("fee/amount", "must be positive")
	}
	return ve.OrNil()
}
