package memory

import (
	"context"
	"testing"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

func meta(t *testing.T) fact.TxMetadata {
	t.Helper()
	return fact.TxMetadata{Author: "tester", Reason: fact.ReasonBoarding}
}

func TestAppendAndCurrentSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	_, err := s.Append(ctx, []store.Record{{ID: "c1", Kind: fact.KindContract, Value: c}}, meta(t))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	view, err := s.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	got, ok := view.Get("c1")
	if !ok {
		t.Fatal("expected c1 to be present")
	}
	if got.Value.(*fact.Contract).ExternalID != "EXT-1" {
		t.Errorf("unexpected value: %+v", got.Value)
	}
}

func TestAppendRejectsDuplicateExternalID(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c1 := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	if _, err := s.Append(ctx, []store.Record{{ID: "c1", Kind: fact.KindContract, Value: c1}}, meta(t)); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	c2 := &fact.Contract{ID: "c2", ExternalID: "EXT-1", BorrowerRef: "p2", Principal: money.New(2000)}
	_, err := s.Append(ctx, []store.Record{{ID: "c2", Kind: fact.KindContract, Value: c2}}, meta(t))
	if err == nil {
		t.Fatal("expected integrity violation for duplicate external-id")
	}
	if _, ok := err.(*fact.IntegrityViolationError); !ok {
		t.Errorf("expected *fact.IntegrityViolationError, got %T", err)
	}

	view, _ := s.CurrentSnapshot(ctx)
	if _, ok := view.Get("c2"); ok {
		t.Error("rejected append must leave the store untouched")
	}
}

func TestAppendBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c1 := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	if _, err := s.Append(ctx, []store.Record{{ID: "c1", Kind: fact.KindContract, Value: c1}}, meta(t)); err != nil {
		t.Fatalf("setup append failed: %v", err)
	}

	// second batch: i1 is fine, but c2 collides on external-id — the whole
	// batch, including i1, must be rejected.
	i1 := &fact.Installment{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, 1, 31), PrincipalDue: money.New(1000)}
	c2 := &fact.Contract{ID: "c2", ExternalID: "EXT-1", BorrowerRef: "p2", Principal: money.New(500)}
	_, err := s.Append(ctx, []store.Record{
		{ID: "i1", Kind: fact.KindInstallment, Value: i1},
		{ID: "c2", Kind: fact.KindContract, Value: c2},
	}, meta(t))
	if err == nil {
		t.Fatal("expected batch failure")
	}

	view, _ := s.CurrentSnapshot(ctx)
	if _, ok := view.Get("i1"); ok {
		t.Error("i1 must not be visible after its batch failed")
	}
}

func TestAsOfReflectsHistoricalState(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	tx1, err := s.Append(ctx, []store.Record{{ID: "c1", Kind: fact.KindContract, Value: c}}, meta(t))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	p := &fact.Payment{ID: "pay1", ContractRef: "c1", Amount: money.New(200), Date: money.NewDate(2024, 2, 1), Reference: "r1"}
	if _, err := s.Append(ctx, []store.Record{{ID: "pay1", Kind: fact.KindPayment, Value: p}}, meta(t)); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	asOf1, err := s.AsOf(ctx, tx1)
	if err != nil {
		t.Fatalf("as-of failed: %v", err)
	}
	if _, ok := asOf1.Get("pay1"); ok {
		t.Error("payment must not be visible as of tx1")
	}

	current, _ := s.CurrentSnapshot(ctx)
	if _, ok := current.Get("pay1"); !ok {
		t.Error("payment must be visible in the current snapshot")
	}
}

func TestRetractEntityCascadesToOwnedChildren(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	i := &fact.Installment{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, 1, 31), PrincipalDue: money.New(1000)}
	_, err := s.Append(ctx, []store.Record{
		{ID: "c1", Kind: fact.KindContract, Value: c},
		{ID: "i1", Kind: fact.KindInstallment, Value: i},
	}, meta(t))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if _, err := s.RetractEntity(ctx, "c1", fact.TxMetadata{Author: "tester", Reason: fact.ReasonCorrection}); err != nil {
		t.Fatalf("retract failed: %v", err)
	}

	view, _ := s.CurrentSnapshot(ctx)
	if _, ok := view.Get("c1"); ok {
		t.Error("contract should be retracted")
	}
	if _, ok := view.Get("i1"); ok {
		t.Error("owned installment should cascade-retract with its contract")
	}
}

func TestRetractEntityFreesUniqueKey(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c1 := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	if _, err := s.Append(ctx, []store.Record{{ID: "c1", Kind: fact.KindContract, Value: c1}}, meta(t)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := s.RetractEntity(ctx, "c1", fact.TxMetadata{Author: "tester", Reason: fact.ReasonCorrection}); err != nil {
		t.Fatalf("retract failed: %v", err)
	}

	c2 := &fact.Contract{ID: "c2", ExternalID: "EXT-1", BorrowerRef: "p2", Principal: money.New(2000)}
	if _, err := s.Append(ctx, []store.Record{{ID: "c2", Kind: fact.KindContract, Value: c2}}, meta(t)); err != nil {
		t.Errorf("expected external-id to be reusable after retraction, got %v", err)
	}
}

func TestRetractEntityUnknownIDReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	_, err := s.RetractEntity(ctx, "missing", fact.TxMetadata{Author: "tester", Reason: fact.ReasonCorrection})
	if _, ok := err.(*fact.NotFoundError); !ok {
		t.Errorf("expected *fact.NotFoundError, got %T (%v)", err, err)
	}
}

func TestHistoryOrdersAssertAndRetract(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	c := &fact.Contract{ID: "c1", ExternalID: "EXT-1", BorrowerRef: "p1", Principal: money.New(1000)}
	if _, err := s.Append(ctx, []store.Record{{ID: "c1", Kind: fact.KindContract, Value: c}}, meta(t)); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := s.RetractEntity(ctx, "c1", fact.TxMetadata{Author: "tester", Reason: fact.ReasonCorrection}); err != nil {
		t.Fatalf("retract failed: %v", err)
	}

	hist, err := s.History(ctx, "c1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	if hist[0].Op != store.OpAsserted || hist[1].Op != store.OpRetracted {
		t.Errorf("unexpected history order: %+v", hist)
	}
	if hist[0].TxID >= hist[1].TxID {
		t.Error("expected increasing tx ids")
	}
}

func TestListByContractFiltersByKindAndOwner(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	i1 := &fact.Installment{ID: "i1", ContractRef: "c1", Seq: 1, DueDate: money.NewDate(2024, 1, 31), PrincipalDue: money.New(500)}
	i2 := &fact.Installment{ID: "i2", ContractRef: "c2", Seq: 1, DueDate: money.NewDate(2024, 1, 31), PrincipalDue: money.New(500)}
	f1 := &fact.Fee{ID: "f1", ContractRef: "c1", Type: fact.FeeManagement, Amount: money.New(10)}
	_, err := s.Append(ctx, []store.Record{
		{ID: "i1", Kind: fact.KindInstallment, Value: i1},
		{ID: "i2", Kind: fact.KindInstallment, Value: i2},
		{ID: "f1", Kind: fact.KindFee, Value: f1},
	}, meta(t))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	view, _ := s.CurrentSnapshot(ctx)
	installments := view.ListByContract(fact.KindInstallment, "c1")
	if len(installments) != 1 || installments[0].ID != "i1" {
		t.Errorf("expected only i1 for c1, got %+v", installments)
	}
}
