// Package settlement implements the pure mid-period settlement
// calculation spec.md §4.6 describes: given a contract's current state,
// a settlement date, and a penalty-day count, compute how much the
// borrower owes to close the contract today.
package settlement

import (
	"github.com/dafibh/murabaha-ledger/internal/derive"
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
)

// RateSource documents which annual rate the calculation used, per
// SPEC_FULL.md's open-question decision: the rate source is never
// implicit, it is always named on the result.
type RateSource string

const (
	// RateSourceStepUp means the settlement-covering installment fell
	// within a step-up rule's range, and that rule's base rate was used.
	RateSourceStepUp RateSource = "step-up-rule"
	// RateSourceDerived means no step-up rule covered the relevant
	// installment, and the rate was derived from total contract profit,
	// principal, and tenure.
	RateSourceDerived RateSource = "derived"
)

// Settlement is the full output of Calculate, per spec.md §4.6.
type Settlement struct {
	SettlementDate               money.Date
	OutstandingPrincipal         money.Amount
	AccruedProfit                money.Amount
	ProfitAlreadyPaid            money.Amount
	AccruedUnpaidProfit          money.Amount
	UnearnedProfit               money.Amount
	DailyProfit                  money.Amount
	AnnualRate                   money.Amount
	RateSource                   RateSource
	PenaltyDays                  int
	PenaltyAmount                money.Amount
	OutstandingFees              money.Amount
	CreditBalance                money.Amount
	ManualOverride               *money.Amount
	EffectiveAccruedUnpaidProfit money.Amount
	SettlementAmount             money.Amount
	RefundDue                    money.Amount
}

// Calculate is spec.md §4.6's calculate_settlement. manualOverride, when
// non-nil, replaces accrued-unpaid-profit in the settlement-amount
// formula (the caller's documented right to override an accrual dispute).
func Calculate(state *derive.ContractState, settlementDate money.Date, penaltyDays int, manualOverride *money.Amount) (*Settlement, error) {
	installments := state.Installments
	if len(installments) == 0 {
		return nil, &fact.ConsistencyError{ContractID: state.Contract.ID, Detail: "contract has no installments to settle"}
	}

	annualRate, rateSource, err := resolveAnnualRate(state, settlementDate)
	if err != nil {
		return nil, err
	}

	accrued := money.Zero
	dailyProfit := money.Zero
	for idx, iv := range installments {
		due := iv.Installment.DueDate
		switch {
		case !due.After(settlementDate):
			// past: full profit-due accrues
			accrued = accrued.Add(iv.Installment.ProfitDue)
		default:
			periodStart := periodStartFor(state, idx)
			if !periodStart.After(settlementDate) {
				// current: the first future installment whose accrual
				// period contains settlement-date
				dp := money.DailyProfit360(iv.Installment.RemainingPrincipal, annualRate)
				days := money.DaysBetween(periodStart, settlementDate)
				accrued = accrued.Add(money.Accrued360(dp, days))
				dailyProfit = dp
			}
			// future installments beyond the current period accrue nothing
		}
	}

	if dailyProfit.IsZero() {
		// contract fully past its term, or settlement-date precedes the
		// first installment's period; still report a rate-consistent
		// daily-profit against outstanding principal, for the penalty calc.
		dailyProfit = money.DailyProfit360(state.TotalPrincipalDue.Sub(state.TotalPrincipalPaid), annualRate)
	}

	totalScheduledProfit := state.TotalProfitDue
	profitAlreadyPaid := state.TotalProfitPaid
	accruedUnpaidProfit := money.MaxZero(accrued.Sub(profitAlreadyPaid))
	unearnedProfit := money.MaxZero(totalScheduledProfit.Sub(accrued))

	effectiveAccruedUnpaidProfit := accruedUnpaidProfit
	if manualOverride != nil {
		effectiveAccruedUnpaidProfit = *manualOverride
	}

	outstandingPrincipal := money.MaxZero(state.TotalPrincipalDue.Sub(state.TotalPrincipalPaid))
	outstandingFees := money.Zero
	for _, fv := range state.Fees {
		outstandingFees = outstandingFees.Add(fv.Outstanding)
	}
	penaltyAmount := money.Accrued360(dailyProfit, penaltyDays)

	raw := money.Sum(outstandingPrincipal, effectiveAccruedUnpaidProfit, outstandingFees, penaltyAmount).Sub(state.CreditBalance)

	return &Settlement{
		SettlementDate:               settlementDate,
		OutstandingPrincipal:         outstandingPrincipal,
		AccruedProfit:                accrued,
		ProfitAlreadyPaid:            profitAlreadyPaid,
		AccruedUnpaidProfit:          accruedUnpaidProfit,
		UnearnedProfit:               unearnedProfit,
		DailyProfit:                  dailyProfit,
		AnnualRate:                   annualRate,
		RateSource:                   rateSource,
		PenaltyDays:                  penaltyDays,
		PenaltyAmount:                penaltyAmount,
		OutstandingFees:              outstandingFees,
		CreditBalance:                state.CreditBalance,
		ManualOverride:               manualOverride,
		EffectiveAccruedUnpaidProfit: effectiveAccruedUnpaidProfit,
		SettlementAmount:             money.MaxZero(raw),
		RefundDue:                    money.MaxZero(raw.Neg()),
	}, nil
}

// periodStartFor returns the accrual-period start for installment idx:
// the previous installment's due-date, or the contract's start-date for
// the first installment.
func periodStartFor(state *derive.ContractState, idx int) money.Date {
	if idx == 0 {
		return state.Contract.StartDate
	}
	return state.Installments[idx-1].Installment.DueDate
}

// resolveAnnualRate prefers the step-up rule covering the installment
// whose accrual period contains settlement-date; otherwise it derives a
// flat rate from total scheduled profit, principal, and tenure.
func resolveAnnualRate(state *derive.ContractState, settlementDate money.Date) (money.Amount, RateSource, error) {
	for idx, iv := range state.Installments {
		due := iv.Installment.DueDate
		periodStart := periodStartFor(state, idx)
		if due.After(settlementDate) && !periodStart.After(settlementDate) {
			if rule, ok := state.Contract.StepUpRuleCovering(iv.Installment.Seq); ok {
				return rule.BaseRate, RateSourceStepUp, nil
			}
			break
		}
	}

	last := state.Installments[len(state.Installments)-1].Installment
	tenureDays := money.DaysBetween(state.Contract.StartDate, last.DueDate)
	if tenureDays == 0 {
		return money.Zero, "", &fact.ConfigurationError{Detail: "cannot derive annual rate: contract tenure is zero days"}
	}
	if !money.IsPositive(state.Contract.Principal) {
		return money.Zero, "", &fact.ConfigurationError{Detail: "cannot derive annual rate: contract principal is not positive"}
	}
	tenureYears := money.New(int64(tenureDays)).Div(money.New(365))
	annualRate := state.TotalProfitDue.Div(state.Contract.Principal).Div(tenureYears)
	return annualRate, RateSourceDerived, nil
}
