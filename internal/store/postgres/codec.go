package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/dafibh/murabaha-ledger/internal/fact"
)

// encodePayload marshals a concrete fact value to the JSON document
// stored in facts.payload / current_facts.payload. Amounts and dates
// round-trip through shopspring/decimal's and money.Date's own
// MarshalJSON, so precision is never lost going to or from Postgres.
func encodePayload(v any) ([]byte, error) {
	return json.Marshal(v)
}

// decodePayload recovers the concrete fact pointer type (*fact.Contract,
// *fact.Payment, ...) for kind from a
// stored JSON payload. This is the Postgres-side counterpart of the type
// switch every in-process View performs over Record.Value.
func decodePayload(kind fact.Kind, payload []byte) (any, error) {
	var v any
	switch kind {
	case fact.KindContract:
		v = &fact.Contract{}
	case fact.KindInstallment:
		v = &fact.Installment{}
	case fact.KindFee:
		v = &fact.Fee{}
	case fact.KindPayment:
		v = &fact.Payment{}
	case fact.KindDisbursement:
		v = &fact.Disbursement{}
	case fact.KindDepositMovement:
		v = &fact.DepositMovement{}
	case fact.KindPrincipalAllocation:
		v = &fact.PrincipalAllocation{}
	case fact.KindRateAdjustment:
		v = &fact.RateAdjustment{}
	case fact.KindDocumentSnapshot:
		v = &fact.DocumentSnapshot{}
	case fact.KindSigning:
		v = &fact.Signing{}
	case fact.KindParty:
		v = &fact.Party{}
	case fact.KindFacility:
		v = &fact.Facility{}
	default:
		return nil, fmt.Errorf("postgres: unrecognized fact kind %q", kind)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return nil, fmt.Errorf("postgres: decode %s payload: %w", kind, err)
	}
	return v, nil
}
