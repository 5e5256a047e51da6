package fact

// UniqueKeysFor recovers the concrete fact value with a type switch and
// returns the store-wide unique keys it currently holds (spec.md
// invariant 4, schema.go's UniqueAttributes). An entity's own *-id key is
// implicit in its storage key and is never repeated here; this covers
// only the cross-entity and composite keys: contract external-id, party
// jurisdiction id, and the (document, signatory) pair on a signing. Both
// store adapters (internal/store/memory, internal/store/postgres) share
// this so the constraint can never drift between them.
func UniqueKeysFor(v any) []string {
	switch f := v.(type) {
	case *Contract:
		if f.ExternalID == "" {
			return nil
		}
		return []string{"contract/external-id:" + f.ExternalID}
	case *Signing:
		return []string{"signing/document-signatory:" + f.DocumentRef + "|" + f.SignatoryRef}
	case *Party:
		if f.Jurisdiction == "" {
			return nil
		}
		switch f.Kind {
		case PartyCompany:
			return []string{"party/cr-number:" + f.Jurisdiction}
		case PartyPerson:
			return []string{"party/national-id:" + f.Jurisdiction}
		}
		return nil
	default:
		return nil
	}
}

// ContractRefOf extracts the owning contract id from a fact value, for
// contract-scoped listing and cascade retraction. Kinds with no
// ContractRef (Party, Facility, Contract itself) return "".
func ContractRefOf(v any) string {
	switch f := v.(type) {
	case *Installment:
		return f.ContractRef
	case *Fee:
		return f.ContractRef
	case *Payment:
		return f.ContractRef
	case *Disbursement:
		return f.ContractRef
	case *DepositMovement:
		return f.ContractRef
	case *PrincipalAllocation:
		return f.ContractRef
	case *RateAdjustment:
		return f.ContractRef
	case *DocumentSnapshot:
		return f.ContractRef
	default:
		return ""
	}
}

// DocumentRefOf extracts the owning document-snapshot id from a fact
// value, for cascading a document's retraction to its signings.
func DocumentRefOf(v any) string {
	if s, ok := v.(*Signing); ok {
		return s.DocumentRef
	}
	return ""
}
