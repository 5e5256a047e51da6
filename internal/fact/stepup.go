package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// StepUpRule is one row of a contract's optional step-up terms (spec.md
// §4.7). It is carried as a serialized list on the Contract fact, not as
// its own independently-retractable entity, since it only ever changes as
// a whole alongside the contract it describes.
type StepUpRule struct {
	TermSeq       int32
	FirstSeq      int32 // installment-range [first, last], inclusive
	LastSeq       int32
	BaseRate      money.Amount
	OnTimeRate    *money.Amount // optional; nil means no reduction is offered for this term
}

func (r StepUpRule) Validate() error {
	ve := NewValidationError()
	if r.TermSeq < 1 {
		ve.Add("step-up/term-seq", "must be at least 1")
	}
	if r.FirstSeq < 1 || r.LastSeq < r.FirstSeq {
		ve.Add("step-up/installment-range", "must be a non-empty increasing range")
	}
	if money.IsNegative(r.BaseRate) {
		ve.Add("step-up/base-rate", "must not be negative")
	}
	if r.OnTimeRate != nil && money.IsNegative(*r.OnTimeRate) {
		ve.Add("step-up/on-time-rate", "must not be negative")
	}
	return ve.OrNil()
}

// ValidateStepUpTerms checks a full ordered list of rules for contiguous,
// non-overlapping term sequencing and installment ranges.
func ValidateStepUpTerms(rules []StepUpRule) error {
	ve := NewValidationError()
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			if verr, ok := err.(*ValidationError); ok {
				ve.Fields = append(ve.Fields, verr.Fields...)
			}
		}
		if i > 0 {
			prev := rules[i-1]
			if r.TermSeq != prev.TermSeq+1 {
				ve.Add("step-up/term-seq", "term sequence must be contiguous")
			}
			if r.FirstSeq != prev.LastSeq+1 {
				ve.Add("step-up/installment-range", "installment ranges must be contiguous across terms")
			}
		}
	}
	return ve.OrNil()
}
