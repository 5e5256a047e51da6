package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Contract is the master fact for a Murabaha term financing (spec.md §3
// Contract entity). Its attributes are themselves facts and may be
// corrected via retraction; the contract entity is never deleted.
type Contract struct {
	ID                      string
	ExternalID              string
	BorrowerRef             string
	Principal               money.Amount
	SecurityDepositRequired money.Amount
	StartDate               money.Date
	StepUpTerms             []StepUpRule // optional; nil/empty means no step-up schedule
	NetDisbursement         *money.Amount
	CommodityDescription    string // commodity fields, collapsed to a free-text description
	CommodityValue          *money.Amount
	BankName                string // banking fields, collapsed to the essentials a settlement letter needs
	BankAccountNumber       string
	FacilityRef             string // optional; non-empty when this contract is a facility drawdown
	AuthorizedSignatories   []string // party ids required to sign the contract agreement
}

func (c *Contract) Validate() error {
	ve := NewValidationError()
	if c.ID == "" {
		ve.Add("contract/id", "id is required")
	}
	if c.ExternalID == "" {
		ve.Add("contract/external-id", "external id is required")
	}
	if c.BorrowerRef == "" {
		ve.Add("contract/borrower-ref", "borrower reference is required")
	}
	if !money.IsPositive(c.Principal) {
		ve.Add("contract/principal", "must be positive")
	}
	if money.IsNegative(c.SecurityDepositRequired) {
		ve.Add("contract/security-deposit-required", "must not be negative")
	}
	if c.NetDisbursement != nil && money.IsNegative(*c.NetDisbursement) {
		ve.Add("contract/net-disbursement", "must not be negative")
	}
	if err := ValidateStepUpTerms(c.StepUpTerms); err != nil {
		if verr, ok := err.(*ValidationError); ok {
			ve.Fields = append(ve.Fields, verr.Fields...)
		}
	}
	return ve.OrNil()
}

// StepUpRuleCovering returns the rule whose installment range contains
// seq, and whether one was found.
func (c *Contract) StepUpRuleCovering(seq int32) (StepUpRule, bool) {
	for _, r := range c.StepUpTerms {
		if seq >= r.FirstSeq && seq <= r.LastSeq {
			return r, true
		}
	}
	return StepUpRule{}, false
}

// StepUpRuleForTerm returns the rule for the given term sequence number.
func (c *Contract) StepUpRuleForTerm(termSeq int32) (StepUpRule, bool) {
	for _, r := range c.StepUpTerms {
		if r.TermSeq == termSeq {
			return r, true
		}
	}
	return StepUpRule{}, false
}
