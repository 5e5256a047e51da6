// Package stepup implements the step-up terms evaluation spec.md §4.7
// describes: a pure derivation over already-derived installment state,
// never an operation that mutates a contract itself.
package stepup

import (
	"github.com/dafibh/murabaha-ledger/internal/derive"
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
)

// Action is the closed set of actions Evaluate can recommend.
type Action string

const (
	ActionApplyReduction Action = "apply-reduction"
	ActionHoldBaseRate   Action = "hold-base-rate"
)

// Evaluation is the output of evaluating one completed step-up term.
type Evaluation struct {
	Term          int32
	SuggestedRate money.Amount
	RateChange    bool
	Action        Action
}

// Evaluate implements spec.md §4.7's evaluate_step_up: when every
// installment in completedTerm currently derives as paid, the next
// term's rate steps down to the rule's on-time-rate; otherwise it holds
// at base-rate. The dates on which those installments were paid are not
// checked, so an installment paid after its due-date still counts. completedTerm must name a term with a rule in
// state.Contract.StepUpTerms, and a rule must also exist for
// completedTerm+1 — the term the evaluation actually prices.
func Evaluate(state *derive.ContractState, completedTerm int32) (*Evaluation, error) {
	rule, ok := state.Contract.StepUpRuleForTerm(completedTerm)
	if !ok {
		return nil, &fact.ConfigurationError{Detail: "no step-up rule for completed term"}
	}
	nextRule, ok := state.Contract.StepUpRuleForTerm(completedTerm + 1)
	if !ok {
		return nil, &fact.ConfigurationError{Detail: "no step-up rule for the following term"}
	}

	onTime := allPaidByDueDate(state, rule.FirstSeq, rule.LastSeq)

	rate := nextRule.BaseRate
	action := ActionHoldBaseRate
	if onTime && nextRule.OnTimeRate != nil {
		rate = *nextRule.OnTimeRate
		action = ActionApplyReduction
	}

	return &Evaluation{
		Term:          completedTerm + 1,
		SuggestedRate: rate,
		RateChange:    action == ActionApplyReduction,
		Action:        action,
	}, nil
}

// allPaidByDueDate checks every installment in [firstSeq, lastSeq] is
// currently derive.InstallmentStatusPaid. It reads only the current
// derived status, not payment dates, so whether an installment was ever
// overdue before being paid is not detected. Installments outside the contract's
// schedule are treated as not-yet-evaluable and fail the check.
func allPaidByDueDate(state *derive.ContractState, firstSeq, lastSeq int32) bool {
	bySeq := make(map[int32]derive.InstallmentView, len(state.Installments))
	for _, iv := range state.Installments {
		bySeq[iv.Installment.Seq] = iv
	}
	for seq := firstSeq; seq <= lastSeq; seq++ {
		iv, ok := bySeq[seq]
		if !ok || iv.Status != derive.InstallmentStatusPaid {
			return false
		}
	}
	return true
}

// ApplyReduction builds the rate-adjustment fact that records a step-up
// evaluation's apply-reduction action against the installments of the
// term it prices (spec.md §4.8): a separate, explicit operation from
// Evaluate, since evaluation itself never mutates anything. installments
// must be sorted by seq and consecutive, since each one's accrual period
// runs from the previous passed installment's due-date; periodStart
// is the due-date (or contract start-date) immediately preceding the
// first installment passed in.
func ApplyReduction(contractID string, installments []*fact.Installment, periodStart money.Date, newRate money.Amount, reason string) *fact.RateAdjustment {
	refs := make([]string, 0, len(installments))
	newProfitDue := make(map[string]money.Amount, len(installments))
	cursor := periodStart
	for _, inst := range installments {
		days := money.DaysBetween(cursor, inst.DueDate)
		dailyProfit := money.DailyProfit360(inst.RemainingPrincipal, newRate)
		refs = append(refs, inst.ID)
		newProfitDue[inst.ID] = money.Accrued360(dailyProfit, days)
		cursor = inst.DueDate
	}
	return &fact.RateAdjustment{
		ID:              "", // assigned by internal/operations at write time
		ContractRef:     contractID,
		InstallmentRefs: refs,
		NewProfitDue:    newProfitDue,
		Reason:          reason,
	}
}
