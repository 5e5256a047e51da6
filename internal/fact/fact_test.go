package fact

import (
	"testing"
	"time"

	"github.com/dafibh/murabaha-ledger/internal/money"
)

func TestContractValidate(t *testing.T) {
	valid := &Contract{
		ID:          "c1",
		ExternalID:  "EXT-1",
		BorrowerRef: "p1",
		Principal:   money.New(1200000),
		StartDate:   money.NewDate(2024, time.January, 1),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid contract, got %v", err)
	}

	invalid := &Contract{}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("expected validation error for empty contract")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) == 0 {
		t.Error("expected field errors")
	}
}

func TestContractPrincipalMustBePositive(t *testing.T) {
	c := &Contract{ID: "c1", ExternalID: "e1", BorrowerRef: "p1", Principal: money.Zero}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for zero principal")
	}
}

func TestValidateScheduleSumMatchesPrincipal(t *testing.T) {
	principal := money.New(1200000)
	installments := []*Installment{
		{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, time.January, 31), PrincipalDue: money.New(600000)},
		{ID: "i2", ContractRef: "c1", Seq: 2, DueDate: money.NewDate(2024, time.February, 28), PrincipalDue: money.New(600000)},
	}
	if err := ValidateSchedule(principal, installments); err != nil {
		t.Errorf("expected valid schedule, got %v", err)
	}
}

func TestValidateScheduleRejectsMismatchedSum(t *testing.T) {
	principal := money.New(1200000)
	installments := []*Installment{
		{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, time.January, 31), PrincipalDue: money.New(500000)},
		{ID: "i2", ContractRef: "c1", Seq: 2, DueDate: money.NewDate(2024, time.February, 28), PrincipalDue: money.New(600000)},
	}
	if err := ValidateSchedule(principal, installments); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestValidateScheduleRejectsNonContiguousSeq(t *testing.T) {
	principal := money.New(1200000)
	installments := []*Installment{
		{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, time.January, 31), PrincipalDue: money.New(600000)},
		{ID: "i2", ContractRef: "c1", Seq: 3, DueDate: money.NewDate(2024, time.February, 28), PrincipalDue: money.New(600000)},
	}
	if err := ValidateSchedule(principal, installments); err == nil {
		t.Error("expected non-contiguous seq error")
	}
}

func TestValidateScheduleRejectsOutOfOrderDueDates(t *testing.T) {
	principal := money.New(1200000)
	installments := []*Installment{
		{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, time.February, 28), PrincipalDue: money.New(600000)},
		{ID: "i2", ContractRef: "c1", Seq: 2, DueDate: money.NewDate(2024, time.January, 31), PrincipalDue: money.New(600000)},
	}
	if err := ValidateSchedule(principal, installments); err == nil {
		t.Error("expected out-of-order due-date error")
	}
}

func TestFeeValidate(t *testing.T) {
	tests := []struct {
		name    string
		fee     *Fee
		wantErr bool
	}{
		{"valid management fee", &Fee{ID: "f1", ContractRef: "c1", Type: FeeManagement, Amount: money.New(5000)}, false},
		{"zero amount rejected", &Fee{ID: "f1", ContractRef: "c1", Type: FeeManagement, Amount: money.Zero}, true},
		{"unknown type rejected", &Fee{ID: "f1", ContractRef: "c1", Type: "bogus", Amount: money.New(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fee.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDepositMovementTransferRequiresPairedContract(t *testing.T) {
	d := &DepositMovement{ID: "d1", ContractRef: "c1", Type: DepositTransferOut, Amount: money.New(100)}
	if err := d.Validate(); err == nil {
		t.Error("expected error for missing paired contract ref")
	}
	d.PairedContractRef = "c2"
	if err := d.Validate(); err != nil {
		t.Errorf("expected valid transfer, got %v", err)
	}
}

func TestPaymentAmountMayBeNegativeForReversal(t *testing.T) {
	p := &Payment{ID: "p1", ContractRef: "c1", Amount: money.New(-500), Reference: "reversal of p0"}
	if err := p.Validate(); err != nil {
		t.Errorf("expected negative (reversal) amount to be valid, got %v", err)
	}
}

func TestPaymentAmountMayNotBeZero(t *testing.T) {
	p := &Payment{ID: "p1", ContractRef: "c1", Amount: money.Zero, Reference: "r"}
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero amount payment")
	}
}

func TestStepUpTermsContiguity(t *testing.T) {
	base1, _ := money.FromString("0.18")
	onTime1, _ := money.FromString("0.15")
	good := []StepUpRule{
		{TermSeq: 1, FirstSeq: 1, LastSeq: 4, BaseRate: base1, OnTimeRate: &onTime1},
		{TermSeq: 2, FirstSeq: 5, LastSeq: 8, BaseRate: base1},
	}
	if err := ValidateStepUpTerms(good); err != nil {
		t.Errorf("expected contiguous terms to validate, got %v", err)
	}

	bad := []StepUpRule{
		{TermSeq: 1, FirstSeq: 1, LastSeq: 4, BaseRate: base1},
		{TermSeq: 3, FirstSeq: 5, LastSeq: 8, BaseRate: base1},
	}
	if err := ValidateStepUpTerms(bad); err == nil {
		t.Error("expected non-contiguous term-seq error")
	}
}

func TestOwnedChildKindsCascade(t *testing.T) {
	children := OwnedChildKinds(KindContract)
	found := map[Kind]bool{}
	for _, k := range children {
		found[k] = true
	}
	for _, want := range []Kind{KindInstallment, KindFee, KindPayment, KindDisbursement, KindDepositMovement, KindPrincipalAllocation} {
		if !found[want] {
			t.Errorf("expected %s to be a contract-owned child kind", want)
		}
	}
}

func TestTxMetadataRequiresAuthorAndReason(t *testing.T) {
	m := TxMetadata{}
	if err := m.Validate(); err == nil {
		t.Error("expected error for empty tx metadata")
	}
	m = TxMetadata{Author: "alice", Reason: ReasonCorrection}
	if err := m.Validate(); err != nil {
		t.Errorf("expected valid metadata, got %v", err)
	}
}
