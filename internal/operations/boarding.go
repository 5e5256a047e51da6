package operations

import (
	"context"
	"sort"

	"github.com/dafibh/murabaha-ledger/internal/fact"
	"github.com/dafibh/murabaha-ledger/internal/money"
	"github.com/dafibh/murabaha-ledger/internal/store"
)

// InstallmentInput is one row of a schedule supplied to BoardContract,
// before an id has been assigned.
type InstallmentInput struct {
	Seq          int32
	DueDate      money.Date
	PrincipalDue money.Amount
	ProfitDue    money.Amount
}

// FeeInput is one fee supplied to BoardContract, before an id has been
// assigned.
type FeeInput struct {
	Type    fact.FeeType
	Amount  money.Amount
	DueDate money.Date
}

// BoardContractInput carries everything boarding needs to build a
// contract and its owned schedule in a single atomic batch (spec.md §4.11
// boarding operation).
type BoardContractInput struct {
	ExternalID              string
	BorrowerRef             string
	Principal               money.Amount
	SecurityDepositRequired money.Amount
	StartDate               money.Date
	StepUpTerms             []fact.StepUpRule
	NetDisbursement         *money.Amount
	CommodityDescription    string
	CommodityValue          *money.Amount
	BankName                string
	BankAccountNumber       string
	FacilityRef             string
	AuthorizedSignatories   []string
	Installments            []InstallmentInput
	Fees                    []FeeInput
}

// BoardContract builds a contract plus its full installment schedule (and
// any initial fees) with freshly generated ids, and appends them as one
// atomic batch (spec.md §4.11 step 3: "Calls event-store.append
// atomically"). The installment schedule is validated as a whole
// (invariants 2 and 3) before anything is sent to the store.
func (o *Operations) BoardContract(ctx context.Context, in BoardContractInput, meta fact.TxMetadata) (contractID string, txID fact.TxID, err error) {
	contractID = newID()

	installments := make([]*fact.Installment, 0, len(in.Installments))
	sorted := append([]InstallmentInput(nil), in.Installments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	remaining := in.Principal
	for _, row := range sorted {
		installments = append(installments, &fact.Installment{
			ID:                 newID(),
			ContractRef:        contractID,
			Seq:                row.Seq,
			DueDate:            row.DueDate,
			PrincipalDue:       row.PrincipalDue,
			ProfitDue:          row.ProfitDue,
			RemainingPrincipal: remaining,
		})
		remaining = remaining.Sub(row.PrincipalDue)
	}
	if err := fact.ValidateSchedule(in.Principal, installments); err != nil {
		return "", 0, err
	}

	contract := &fact.Contract{
		ID:                      contractID,
		ExternalID:              in.ExternalID,
		BorrowerRef:             in.BorrowerRef,
		Principal:               in.Principal,
		SecurityDepositRequired: in.SecurityDepositRequired,
		StartDate:               in.StartDate,
		StepUpTerms:             in.StepUpTerms,
		NetDisbursement:         in.NetDisbursement,
		CommodityDescription:    in.CommodityDescription,
		CommodityValue:          in.CommodityValue,
		BankName:                in.BankName,
		BankAccountNumber:       in.BankAccountNumber,
		FacilityRef:             in.FacilityRef,
		AuthorizedSignatories:   in.AuthorizedSignatories,
	}

	records := make([]store.Record, 0, 1+len(installments)+len(in.Fees))
	records = append(records, store.Record{ID: contract.ID, Kind: fact.KindContract, Value: contract})
	for _, inst := range installments {
		records = append(records, store.Record{ID: inst.ID, Kind: fact.KindInstallment, Value: inst})
	}
	for _, f := range in.Fees {
		feeID := newID()
		records = append(records, store.Record{ID: feeID, Kind: fact.KindFee, Value: &fact.Fee{
			ID: feeID, ContractRef: contractID, Type: f.Type, Amount: f.Amount, DueDate: f.DueDate,
		}})
	}

	txID, err = o.append(ctx, records, meta)
	if err != nil {
		return "", 0, err
	}
	return contractID, txID, nil
}

// CreateFacility builds a facility with a freshly generated id.
func (o *Operations) CreateFacility(ctx context.Context, externalID, borrowerRef string, creditLimit money.Amount, templateTerms string, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	f := &fact.Facility{ID: id, ExternalID: externalID, BorrowerRef: borrowerRef, CreditLimit: creditLimit, TemplateTerms: templateTerms}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindFacility, Value: f}}, meta)
	return id, txID, err
}

// RegisterParty builds a party with a freshly generated id.
func (o *Operations) RegisterParty(ctx context.Context, kind fact.PartyKind, legalName, jurisdiction string, meta fact.TxMetadata) (string, fact.TxID, error) {
	id := newID()
	p := &fact.Party{ID: id, Kind: kind, LegalName: legalName, Jurisdiction: jurisdiction}
	txID, err := o.append(ctx, []store.Record{{ID: id, Kind: fact.KindParty, Value: p}}, meta)
	return id, txID, err
}
