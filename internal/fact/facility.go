package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Facility is a parent record carrying a credit limit and template terms
// (spec.md §4.12). Child contracts (drawdowns) reference it through
// Contract.FacilityRef.
type Facility struct {
	ID            string
	ExternalID    string
	BorrowerRef   string
	CreditLimit   money.Amount
	TemplateTerms string // opaque description of the default terms drawdowns inherit
}

func (f *Facility) Validate() error {
	ve := NewValidationError()
	if f.ID == "" {
		ve.Add("facility/id", "id is required")
	}
	if f.BorrowerRef == "" {
		ve.Add("facility/borrower-ref", "borrower reference is required")
	}
	if !money.IsPositive(f.CreditLimit) {
		ve.Add("facility/credit-limit", "must be positive")
	}
	return ve.OrNil()
}
