package fact

import "time"

// TxMetadata is attached to every commit and is never mutated (spec.md
// §3, §6). It is carried alongside the fact batch it describes, not
// embedded in any individual fact.
type TxMetadata struct {
	Author       string    // tx/author
	Reason       ReasonTag // tx/reason
	Note         string    // tx/note, free text
	Corrects     string    // tx/corrects, optional fact id being corrected
	OriginalDate *time.Time // tx/original-date, for migrated/backdated events
	MigratedFrom string    // tx/migrated-from, optional source identifier
}

// Validate checks the metadata is well-formed before it accompanies a
// commit.
func (m TxMetadata) Validate() error {
	ve := NewValidationError()
	if m.Author == "" {
		ve.Add("tx/author", "author is required")
	}
	if m.Reason == "" {
		ve.Add("tx/reason", "reason is required")
	} else if !m.Reason.Valid() {
		ve.Add("tx/reason", "unrecognized reason tag")
	}
	return ve.OrNil()
}

// TxID is a monotonic transaction identifier, serving as the time axis
// for as_of queries (spec.md §5 ordering guarantees). Adapters generate
// these; the core only requires that they compare with <.
type TxID uint64
