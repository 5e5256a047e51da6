package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Payment is appended as money arrives, and retracted (never mutated) if
// recording was wrong (spec.md §3 Payment entity). Amount is signed: a
// negative amount records a reversal (e.g. a bounced check), per §7's
// retraction-vs-reversal distinction.
type Payment struct {
	ID              string
	ContractRef     string
	Amount          money.Amount
	Date            money.Date
	Reference       string
	SourceContractRef string // optional; set for inter-contract flow
}

func (p *Payment) Validate() error {
	ve := NewValidationError()
	if p.ID == "" {
		ve.Add("payment/id", "id is required")
	}
	if p.ContractRef == "" {
		ve.Add("payment/contract-ref", "contract reference is required")
	}
	if p.Amount.IsZero() {
		ve.Add("payment/amount", "must not be zero")
	}
	if p.Reference == "" {
		ve.Add("payment/reference", "reference is required")
	}
	return ve.OrNil()
}
