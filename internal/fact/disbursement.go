package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Disbursement records money leaving toward the vendor or back to the
// customer (spec.md §3 Disbursement entity). Only Type ==
// DisbursementRefund enters the waterfall, with a negative effect.
type Disbursement struct {
	ID          string
	ContractRef string
	Type        DisbursementType
	Amount      money.Amount
	Date        money.Date
	Reference   string
}

func (d *Disbursement) Validate() error {
	ve := NewValidationError()
	if d.ID == "" {
		ve.Add("disbursement/id", "id is required")
	}
	if d.ContractRef == "" {
		ve.Add("disbursement/contract-ref", "contract reference is required")
	}
	if !d.Type.Valid() {
		ve.Add("disbursement/type", "unrecognized disbursement type")
	}
	if !money.IsPositive(d.Amount) {
		ve.Add("disbursement/amount", "must be positive")
	}
	return ve.OrNil()
}
