package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// Signing is an append-only relation between a document and a party
// (spec.md §3 Signing entity, §4.10). (DocumentRef, SignatoryRef) is
// unique (spec.md invariant 6).
type Signing struct {
	ID             string
	DocumentRef    string
	SignatoryRef   string
	Method         SigningMethod
	Date           money.Date
	ScanArchiveRef string // optional; populated for a wet-ink signing whose scan was archived
}

func (s *Signing) Validate() error {
	ve := NewValidationError()
	if s.ID == "" {
		ve.Add("signing/id", "id is required")
	}
	if s.DocumentRef == "" {
		ve.Add("signing/document-ref", "document reference is required")
	}
	if s.SignatoryRef == "" {
		ve.Add("signing/signatory-ref", "signatory reference is required")
	}
	if !s.Method.Valid() {
		ve.Add("signing/method", "unrecognized signing method")
	}
	return ve.OrNil()
}
