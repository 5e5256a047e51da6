package fact

import "fmt"

// FieldError is one structured validation failure, surfaced verbatim to
// the caller per spec.md §7 ("structured {field, message} entries").
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError reports that a fact or batch violates its schema or an
// invariant. It is never partially applied — spec.md §7 requires the full
// error list with no side effects.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	return fmt.Sprintf("validation failed (%d errors): %s (+%d more)", len(e.Fields), e.Fields[0].Error(), len(e.Fields)-1)
}

// Add appends a field error and returns the receiver, for fluent building.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field errors have been collected.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e if it carries any field errors, else nil — used so
// Validate() methods can build up a *ValidationError unconditionally and
// return it as an error interface value only when non-empty.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewValidationError starts a fresh, empty validation error accumulator.
func NewValidationError() *ValidationError {
	return &ValidationError{}
}

// NotFoundError reports a reference to a non-existent entity, for both
// retraction of an unknown id and derivation over a dangling reference.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IntegrityViolationError reports a unique-constraint failure raised by
// the event store itself (as opposed to pre-commit schema validation).
type IntegrityViolationError struct {
	Constraint string
	Value      string
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("integrity violation on %s: duplicate value %q", e.Constraint, e.Value)
}

// ConsistencyError reports that a derivation observed a violation of an
// invariant that pre-commit validation should have prevented. It is a bug
// report, never caught inside the core (spec.md §7), carrying enough
// context to locate the offending contract.
type ConsistencyError struct {
	ContractID string
	Detail     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency error on contract %s: %s", e.ContractID, e.Detail)
}

// ConfigurationError reports malformed step-up terms or a missing rate
// source required to compute a settlement.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Detail)
}
