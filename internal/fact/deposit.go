package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// DepositMovement tracks security-deposit holdings (spec.md §3 Deposit
// movement entity). Only Type == DepositOffset enters the waterfall;
// the transfer-in/transfer-out pair moves collateral between contracts
// and always appears together, linked via PairedContractRef.
type DepositMovement struct {
	ID                string
	ContractRef       string
	Type              DepositType
	Amount            money.Amount
	Date              money.Date
	Source            DepositSource // optional
	PairedContractRef string        // optional; required for transfer-in/transfer-out
}

func (d *DepositMovement) Validate() error {
	ve := NewValidationError()
	if d.ID == "" {
		ve.Add("deposit/id", "id is required")
	}
	if d.ContractRef == "" {
		ve.Add("deposit/contract-ref", "contract reference is required")
	}
	if !d.Type.Valid() {
		ve.Add("deposit/type", "unrecognized deposit type")
	}
	if !money.IsPositive(d.Amount) {
		ve.Add("deposit/amount", "must be positive")
	}
	if !d.Source.Valid() {
		ve.Add("deposit/source", "unrecognized deposit source")
	}
	if (d.Type == DepositTransferIn || d.Type == DepositTransferOut) && d.PairedContractRef == "" {
		ve.Add("deposit/paired-contract-ref", "transfers must reference the paired contract")
	}
	return ve.OrNil()
}
