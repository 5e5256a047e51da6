package fact

import "github.com/dafibh/murabaha-ledger/internal/money"

// DocumentSnapshot is a frozen derivation tied to a document (spec.md §3
// Document snapshot entity, §4.9). Payload is the self-describing,
// serialized derivation the document was generated from; it is written
// once and never mutated, though it may be superseded.
type DocumentSnapshot struct {
	ID            string
	ContractRef   string
	Kind          DocumentKind
	Payload       []byte // self-describing serialized payload; see internal/document for the codec
	Parameters    map[string]string // date ranges, penalty-days, etc., as opaque string-encoded values
	SupersedesRef string            // optional
	GeneratedAt   money.Date
}

func (d *DocumentSnapshot) Validate() error {
	ve := NewValidationError()
	if d.ID == "" {
		ve.Add("document-snapshot/id", "id is required")
	}
	if d.ContractRef == "" {
		ve.Add("document-snapshot/contract-ref", "contract reference is required")
	}
	if !d.Kind.Valid() {
		ve.Add("document-snapshot/kind", "unrecognized document kind")
	}
	if len(d.Payload) == 0 {
		ve.Add("document-snapshot/payload", "payload must not be empty")
	}
	return ve.OrNil()
}
