package operations

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/murabaha-ledger/internal/derive"
	"github.com/dafibh/murabaha-ledger/internal/document"
	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/stepup"
)

func TestCreateFacilityAndRegisterParty(t *testing.T) {
	ctx := context.Background()
	ops, s := newTestOps()

	partyID, _, err := ops.RegisterParty(ctx, fact.PartyCompany, "Acme LLC", "CR-900", testMeta(fact.ReasonBoarding))
	if err != nil {
		t.Fatalf("register party failed: %v", err)
	}

	facilityID, _, err := ops.CreateFacility(ctx, "FAC-900", partyID, money.New(500000), "template-a", testMeta(fact.ReasonBoarding))
	if err != nil {
		t.Fatalf("create facility failed: %v", err)
	}

	v, _ := s.CurrentSnapshot(ctx)
	rec, ok := v.Get(facilityID)
	if !ok {
		t.Fatal("expected facility to be queryable")
	}
	if rec.Value.(*fact.Facility).BorrowerRef != partyID {
		t.Error("facility borrower-ref should match the registered party")
	}
}

func TestRecordFeeAndDisbursementAndPrincipalAllocation(t *testing.T) {
	ctx := context.Background()
	ops, s := newTestOps()

	contractID, _, err := ops.BoardContract(ctx, BoardContractInput{
		ExternalID: "EXT-200", BorrowerRef: "p1", Principal: money.New(100000), StartDate: money.NewDate(2024, time.January, 1),
		Installments: []InstallmentInput{{Seq: 1, DueDate: money.NewDate(2024, time.February, 1), PrincipalDue: money.New(100000), ProfitDue: money.New(5000)}},
	}, testMeta(fact.ReasonBoarding))
	if err != nil {
		t.Fatalf("boarding failed: %v", err)
	}

	if _, _, err := ops.RecordFee(ctx, contractID, fact.FeeLate, money.New(500), money.NewDate(2024, time.February, 10), testMeta(fact.ReasonOperational)); err != nil {
		t.Fatalf("record fee failed: %v", err)
	}
	if _, _, err := ops.RecordDisbursement(ctx, contractID, fact.DisbursementFunding, money.New(100000), money.NewDate(2024, time.January, 1), "wire-out", testMeta(fact.ReasonOperational)); err != nil {
		t.Fatalf("record disbursement failed: %v", err)
	}
	if _, _, err := ops.RecordPrincipalAllocation(ctx, contractID, money.New(10000), money.NewDate(2024, time.January, 2), testMeta(fact.ReasonOperational)); err != nil {
		t.Fatalf("record principal allocation failed: %v", err)
	}

	v, _ := s.CurrentSnapshot(ctx)
	state, err := derive.Derive(v, contractID, money.NewDate(2024, time.February, 15))
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if len(state.Fees) != 1 {
		t.Fatalf("expected 1 fee, got %d", len(state.Fees))
	}
}

func TestRecordDepositMovementRequiresPairedContractForTransfer(t *testing.T) {
	ctx := context.Background()
	ops, _ := newTestOps()
	_, _, err := ops.RecordDepositMovement(ctx, "c1", fact.DepositTransferOut, money.New(1000), money.NewDate(2024, time.January, 1), fact.DepositSourceCustomer, "", testMeta(fact.ReasonOperational))
	if err == nil {
		t.Fatal("expected an error for a transfer-out deposit movement with no paired contract")
	}
}

func TestApplyRateAdjustmentGenerateDocumentAndRecordSigningEndToEnd(t *testing.T) {
	ctx := context.Background()
	ops, s := newTestOps()

	onTime15, _ := money.FromString("0.15")
	baseRate18, _ := money.FromString("0.18")
	contractID, _, err := ops.BoardContract(ctx, BoardContractInput{
		ExternalID: "EXT-300", BorrowerRef: "p1", Principal: money.New(400000), StartDate: money.NewDate(2024, time.January, 1),
		StepUpTerms: []fact.StepUpRule{
			{TermSeq: 1, FirstSeq: 1, LastSeq: 2, BaseRate: baseRate18},
			{TermSeq: 2, FirstSeq: 3, LastSeq: 4, BaseRate: baseRate18, OnTimeRate: &onTime15},
		},
		AuthorizedSignatories: []string{"p1"},
		Installments: []InstallmentInput{
			{Seq: 1, DueDate: money.NewDate(2024, time.February, 1), PrincipalDue: money.New(100000), ProfitDue: money.New(12000)},
			{Seq: 2, DueDate: money.NewDate(2024, time.March, 1), PrincipalDue: money.New(100000), ProfitDue: money.New(12000)},
			{Seq: 3, DueDate: money.NewDate(2024, time.April, 1), PrincipalDue: money.New(100000), ProfitDue: money.New(12000)},
			{Seq: 4, DueDate: money.NewDate(2024, time.May, 1), PrincipalDue: money.New(100000), ProfitDue: money.New(12000)},
		},
	}, testMeta(fact.ReasonBoarding))
	if err != nil {
		t.Fatalf("boarding failed: %v", err)
	}

	for seq, due := range map[int32]money.Date{1: money.NewDate(2024, time.February, 1), 2: money.NewDate(2024, time.March, 1)} {
		if _, _, err := ops.RecordPayment(ctx, contractID, money.New(112000), due, "auto", "", testMeta(fact.ReasonOperational)); err != nil {
			t.Fatalf("payment for seq %d failed: %v", seq, err)
		}
	}

	v, err := s.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	state, err := derive.Derive(v, contractID, money.NewDate(2024, time.March, 2))
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}

	eval, err := stepup.Evaluate(state, 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if eval.Action != stepup.ActionApplyReduction {
		t.Fatalf("expected apply-reduction, got %s", eval.Action)
	}

	var term2 []*fact.Installment
	for _, iv := range state.Installments {
		if iv.Installment.Seq >= 3 {
			term2 = append(term2, iv.Installment)
		}
	}
	adj := stepup.ApplyReduction(contractID, term2, money.NewDate(2024, time.March, 1), eval.SuggestedRate, "step-up term 1 completed on time")
	if _, _, err := ops.ApplyRateAdjustment(ctx, adj, testMeta(fact.ReasonOperational)); err != nil {
		t.Fatalf("apply rate adjustment failed: %v", err)
	}

	v2, _ := s.CurrentSnapshot(ctx)
	agreement, err := document.BuildAgreement(v2, contractID, money.NewDate(2024, time.March, 2))
	if err != nil {
		t.Fatalf("build agreement failed: %v", err)
	}
	docID, _, err := ops.GenerateDocumentSnapshot(ctx, agreement, testMeta(fact.ReasonOperational))
	if err != nil {
		t.Fatalf("generate document snapshot failed: %v", err)
	}

	v3, _ := s.CurrentSnapshot(ctx)
	signed, err := document.ContractSigned(v3, contractID)
	if err != nil {
		t.Fatalf("contract-signed? failed: %v", err)
	}
	if signed {
		t.Error("expected contract-signed? false before any signing")
	}

	if _, _, err := ops.RecordSigning(ctx, docID, "p1", fact.SigningWetInk, money.NewDate(2024, time.March, 2), "", testMeta(fact.ReasonOperational)); err != nil {
		t.Fatalf("record signing failed: %v", err)
	}

	v4, _ := s.CurrentSnapshot(ctx)
	signed, err = document.ContractSigned(v4, contractID)
	if err != nil {
		t.Fatalf("contract-signed? failed: %v", err)
	}
	if !signed {
		t.Error("expected contract-signed? true once the sole authorized signatory has signed")
	}

	final, err := derive.Derive(v4, contractID, money.NewDate(2024, time.March, 2))
	if err != nil {
		t.Fatalf("derive after rate adjustment failed: %v", err)
	}
	for _, iv := range final.Installments {
		if iv.Installment.Seq >= 3 && iv.Installment.ProfitDue.Equal(money.New(12000)) {
			t.Errorf("installment seq %d should reflect the reduced rate, still got the original profit-due", iv.Installment.Seq)
		}
	}
}
