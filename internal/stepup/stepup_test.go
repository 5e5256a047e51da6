package stepup

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/murabaha-ledger/internal/derive"
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/store"
	"github.com/dafibh/murabaha-ledger/internal/store/memory"
)

// boardScenarioF builds spec.md's scenario F fixture: a contract with
// step-up rules (term 1 = installments 1-4 @ 15%, term 2 = installments
// 5-8 @ base 18% / on-time 15%) and, when payTermOne is set, all four
// term-1 installments paid on their due-dates.
func boardScenarioF(t *testing.T, payTermOne bool) *derive.ContractState {
	t.Helper()
	ctx := context.Background()
	s := memory.New(nil)
	meta := fact.TxMetadata{Author: "tester", Reason: fact.ReasonBoarding}

	baseRate15, _ := money.FromString("0.15")
	baseRate18, _ := money.FromString("0.18")
	onTime15, _ := money.FromString("0.15")

	contract := &fact.Contract{
		ID: "c1", ExternalID: "EXT-F", BorrowerRef: "p1", Principal: money.New(800000), StartDate: money.NewDate(2024, time.January, 1),
		StepUpTerms: []fact.StepUpRule{
			{TermSeq: 1, FirstSeq: 1, LastSeq: 4, BaseRate: baseRate15},
			{TermSeq: 2, FirstSeq: 5, LastSeq: 8, BaseRate: baseRate18, OnTimeRate: &onTime15},
		},
	}
	borrower := &fact.Party{ID: "p1", Kind: fact.PartyCompany, LegalName: "Acme LLC", Jurisdiction: "CR-F"}

	records := []store.Record{
		{ID: "c1", Kind: fact.KindContract, Value: contract},
		{ID: "p1", Kind: fact.KindParty, Value: borrower},
	}
	for seq := int32(1); seq <= 8; seq++ {
		id := "i" + string(rune('0'+seq))
		inst := &fact.Installment{
			ID: id, ContractRef: "c1", Seq: seq,
			DueDate:            money.NewDate(2024, time.January, 1).AddMonths(int(seq)),
			PrincipalDue:       money.New(100000),
			ProfitDue:          money.New(10000),
			RemainingPrincipal: money.New(800000 - 100000*int64(seq-1)),
		}
		records = append(records, store.Record{ID: id, Kind: fact.KindInstallment, Value: inst})
	}
	if _, err := s.Append(ctx, records, meta); err != nil {
		t.Fatalf("boarding failed: %v", err)
	}

	if payTermOne {
		for seq := int32(1); seq <= 4; seq++ {
			id := "i" + string(rune('0'+seq))
			dueDate := money.NewDate(2024, time.January, 1).AddMonths(int(seq))
			pay := &fact.Payment{ID: "pay" + id, ContractRef: "c1", Amount: money.New(110000), Date: dueDate, Reference: "auto-" + id}
			if _, err := s.Append(ctx, []store.Record{{ID: "pay" + id, Kind: fact.KindPayment, Value: pay}}, fact.TxMetadata{Author: "tester", Reason: fact.ReasonOperational}); err != nil {
				t.Fatalf("payment append failed: %v", err)
			}
		}
	}

	v, err := s.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	state, err := derive.Derive(v, "c1", money.NewDate(2024, time.September, 1))
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	return state
}

func TestEvaluateAppliesReductionWhenTermFullyPaidOnTime(t *testing.T) {
	state := boardScenarioF(t, true)
	eval, err := Evaluate(state, 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if eval.Action != ActionApplyReduction {
		t.Errorf("expected apply-reduction, got %s", eval.Action)
	}
	if !eval.RateChange {
		t.Error("expected rate-change true")
	}
	if !eval.SuggestedRate.Equal(mustRate("0.15")) {
		t.Errorf("expected suggested-rate 0.15, got %s", eval.SuggestedRate)
	}
}

func TestEvaluateHoldsBaseRateWhenTermNotFullyPaid(t *testing.T) {
	state := boardScenarioF(t, false)
	eval, err := Evaluate(state, 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if eval.Action != ActionHoldBaseRate {
		t.Errorf("expected hold-base-rate, got %s", eval.Action)
	}
	if eval.RateChange {
		t.Error("expected rate-change false")
	}
	if !eval.SuggestedRate.Equal(mustRate("0.18")) {
		t.Errorf("expected suggested-rate 0.18, got %s", eval.SuggestedRate)
	}
}

func TestEvaluateUnknownTermReturnsConfigurationError(t *testing.T) {
	state := boardScenarioF(t, true)
	_, err := Evaluate(state, 99)
	if _, ok := err.(*fact.ConfigurationError); !ok {
		t.Errorf("expected *fact.ConfigurationError, got %T (%v)", err, err)
	}
}

// TestApplyReductionChangesDerivedProfitDueAndPreservesInstallmentHistory
// covers the second half of spec.md's scenario F: applying the
// rate-adjustment fact ApplyReduction builds changes term 2's derived
// profit-due, while term 2's installment facts themselves are never
// rewritten, so their own history is untouched.
func TestApplyReductionChangesDerivedProfitDueAndPreservesInstallmentHistory(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	meta := fact.TxMetadata{Author: "tester", Reason: fact.ReasonBoarding}

	baseRate18, _ := money.FromString("0.18")
	onTime15, _ := money.FromString("0.15")
	newRate, _ := money.FromString("0.15")

	contract := &fact.Contract{
		ID: "c1", ExternalID: "EXT-F2", BorrowerRef: "p1", Principal: money.New(800000), StartDate: money.NewDate(2024, time.January, 1),
		StepUpTerms: []fact.StepUpRule{
			{TermSeq: 1, FirstSeq: 1, LastSeq: 4, BaseRate: baseRate18},
			{TermSeq: 2, FirstSeq: 5, LastSeq: 8, BaseRate: baseRate18, OnTimeRate: &onTime15},
		},
	}
	borrower := &fact.Party{ID: "p1", Kind: fact.PartyCompany, LegalName: "Acme LLC", Jurisdiction: "CR-F2"}

	var term2 []*fact.Installment
	records := []store.Record{
		{ID: "c1", Kind: fact.KindContract, Value: contract},
		{ID: "p1", Kind: fact.KindParty, Value: borrower},
	}
	for seq := int32(1); seq <= 8; seq++ {
		id := "i" + string(rune('0'+seq))
		inst := &fact.Installment{
			ID: id, ContractRef: "c1", Seq: seq,
			DueDate:            money.NewDate(2024, time.January, 1).AddMonths(int(seq)),
			PrincipalDue:       money.New(100000),
			ProfitDue:          money.New(12000),
			RemainingPrincipal: money.New(800000 - 100000*int64(seq-1)),
		}
		records = append(records, store.Record{ID: id, Kind: fact.KindInstallment, Value: inst})
		if seq >= 5 {
			term2 = append(term2, inst)
		}
	}
	if _, err := s.Append(ctx, records, meta); err != nil {
		t.Fatalf("boarding failed: %v", err)
	}

	periodStart := money.NewDate(2024, time.January, 1).AddMonths(4)
	adj := ApplyReduction("c1", term2, periodStart, newRate, "step-up term 1 completed on time")
	adj.ID = "radj1"
	if _, err := s.Append(ctx, []store.Record{{ID: "radj1", Kind: fact.KindRateAdjustment, Value: adj}}, fact.TxMetadata{Author: "tester", Reason: fact.ReasonOperational}); err != nil {
		t.Fatalf("rate adjustment append failed: %v", err)
	}

	v, err := s.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	state, err := derive.Derive(v, "c1", money.NewDate(2024, time.September, 1))
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	for _, iv := range state.Installments {
		if iv.Installment.Seq < 5 {
			if !iv.Installment.ProfitDue.Equal(money.New(12000)) {
				t.Errorf("term 1 installment %s should keep its original profit-due, got %s", iv.Installment.ID, iv.Installment.ProfitDue)
			}
			continue
		}
		if iv.Installment.ProfitDue.Equal(money.New(12000)) {
			t.Errorf("term 2 installment %s should reflect the adjusted profit-due, still got the original %s", iv.Installment.ID, iv.Installment.ProfitDue)
		}
	}

	hist, err := s.History(ctx, "i5")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected installment i5's own history untouched by the rate adjustment, got %d entries", len(hist))
	}
	if !hist[0].Record.Value.(*fact.Installment).ProfitDue.Equal(money.New(12000)) {
		t.Error("installment i5's asserted fact should still carry its original profit-due; only the derived read changes")
	}
}

func mustRate(s string) money.Amount {
	r, _ := money.FromString(s)
	return r
}
