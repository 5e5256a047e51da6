package fact

// Party is a company or person that can be a borrower, signatory, or
// facility sponsor (spec.md §3 Party entity).
type Party struct {
	ID           string
	Kind         PartyKind
	LegalName    string
	Jurisdiction string // CR-number for companies, national-id for persons
}

func (p *Party) Validate() error {
	ve := NewValidationError()
	if p.ID == "" {
		ve.Add("party/id", "id is required")
	}
	if !p.Kind.Valid() {
		ve.Add("party/kind", "must be company or person")
	}
	if p.LegalName == "" {
		ve.Add("party/legal-name", "legal name is required")
	}
	if p.Jurisdiction == "" {
		field := "party/national-id"
		if p.Kind == PartyCompany {
			field = "party/cr-number"
		}
		ve.Add(field, "jurisdiction identifier is required")
	}
	return ve.OrNil()
}
