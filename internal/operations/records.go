package operations

import (
	"context"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// RecordPayment appends a payment fact with a freshly generated id.
// Amount is signed — pass a negative amount to record a reversal (spec.md
// §7).
func (o *Operations) RecordPayment(ctx context.Context, contractID string, amount money.Amount, date money.Date, reference, sourceContractRef string, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	p := &fact.Payment{ID: id, ContractRef: contractID, Amount: amount, Date: date, Reference: reference, SourceContractRef: sourceContractRef}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindPayment, Value: p}}, meta)
	return id, txID, err
}

// RecordFee appends a fee fact with a freshly generated id, for fees
// introduced after boarding (e.g. a late fee).
func (o *Operations) RecordFee(ctx context.Context, contractID string, feeType fact.FeeType, amount money.Amount, dueDate money.Date, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	f := &fact.Fee{ID: id, ContractRef: contractID, Type: feeType, Amount: amount, DueDate: dueDate}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindFee, Value: f}}, meta)
	return id, txID, err
}

// RecordDisbursement appends a disbursement fact with a freshly generated
// id.
func (o *Operations) RecordDisbursement(ctx context.Context, contractID string, disbType fact.DisbursementType, amount money.Amount, date money.Date, reference string, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	d := &fact.Disbursement{ID: id, ContractRef: contractID, Type: disbType, Amount: amount, Date: date, Reference: reference}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindDisbursement, Value: d}}, meta)
	return id, txID, err
}

// RecordDepositMovement appends a deposit-movement fact with a freshly
// generated id.
func (o *Operations) RecordDepositMovement(ctx context.Context, contractID string, depType fact.DepositType, amount money.Amount, date money.Date, source fact.DepositSource, pairedContractRef string, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	d := &fact.DepositMovement{ID: id, ContractRef: contractID, Type: depType, Amount: amount, Date: date, Source: source, PairedContractRef: pairedContractRef}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindDepositMovement, Value: d}}, meta)
	return id, txID, err
}

// TransferDeposit appends the matched transfer-out/transfer-in pair that
// moves collateral between two contracts as a single atomic batch, so
// the pairing can never be observed half-applied.
func (o *Operations) TransferDeposit(ctx context.Context, fromContractID, toContractID string, amount money.Amount, date money.Date, meta fact.TxMetadata) (outID, inID string, txID fact.TxID, err error) {
	outID, inID = newID(), newID()
	out := &fact.DepositMovement{ID: outID, ContractRef: fromContractID, Type: fact.DepositTransferOut, Amount: amount, Date: date, PairedContractRef: toContractID}
	in := &fact.DepositMovement{ID: inID, ContractRef: toContractID, Type: fact.DepositTransferIn, Amount: amount, Date: date, PairedContractRef: fromContractID}
	txID, err = o.append(ctx, []store.Record{
		{ID: outID, Kind: fact.KindDepositMovement, Value: out},
		{ID: inID, Kind: fact.KindDepositMovement, Value: in},
	}, meta)
	if err != nil {
		return "", "", 0, err
	}
	return outID, inID, txID, nil
}

// RecordPrincipalAllocation appends a principal-allocation fact with a
// freshly generated id.
func (o *Operations) RecordPrincipalAllocation(ctx context.Context, contractID string, amount money.Amount, date money.Date, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	a := &fact.PrincipalAllocation{ID: id, ContractRef: contractID, Amount: amount, Date: date}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindPrincipalAllocation, Value: a}}, meta)
	return id, txID, err
}

// ApplyRateAdjustment appends a rate-adjustment fact with a freshly
// generated id (spec.md §4.8). adj.ID is assigned here; callers build the
// rest of the fact (e.g. via internal/stepup.ApplyReduction).
func (o *Operations) ApplyRateAdjustment(ctx context.Context, adj *fact.RateAdjustment, meta fact.TxMetadata) (string, fact.TxID, error) {
	adj.ID = newID()
	txID, err := o.append(ctx, []store.Record{{ID: adj.ID, Kind: fact.KindRateAdjustment, Value: adj}}, meta)
	return adj.ID, txID, err
}

// GenerateDocumentSnapshot appends a document-snapshot fact with a
// freshly generated id (spec.md §4.9). snap.ID is assigned here; callers
// build the rest of the fact via internal/document's Build* functions.
func (o *Operations) GenerateDocumentSnapshot(ctx context.Context, snap *fact.DocumentSnapshot, meta fact.TxMetadata) (string, fact.TxID, error) {
	snap.ID = newID()
	txID, err := o.append(ctx, []store.Record{{ID: snap.ID, Kind: fact.KindDocumentSnapshot, Value: snap}}, meta)
	return snap.ID, txID, err
}

// RecordSigning appends a signing fact with a freshly generated id
// (spec.md §4.10).
func (o *Operations) RecordSigning(ctx context.Context, documentRef, signatoryRef string, method fact.SigningMethod, date money.Date, scanArchiveRef string, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	s := &fact.Signing{ID: id, DocumentRef: documentRef, SignatoryRef: signatoryRef, Method: method, Date: date, ScanArchiveRef: scanArchiveRef}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindSigning, Value: s}}, meta)
	return id, txID, err
}
