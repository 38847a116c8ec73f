package finbase

import (
	"fmt"
	"strings"
)

// EncodingError reports a plaintext/ciphertext conversion failure for a
// single field. The store is left untouched for that field.
type EncodingError struct {
	Field FieldID
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("field %v: encoding failed: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DuplicateIDError reports a repeated id during bulk load. The whole load
// must be aborted by the caller.
type DuplicateIDError struct {
	Kind Kind
	ID   int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%v: duplicate id %d", e.Kind, e.ID)
}

// ResolutionError reports a stored foreign-key reference that cannot be
// resolved to a live entity. The dataset is considered inconsistent.
type ResolutionError struct {
	Kind  Kind    // kind of the referencing item
	Field FieldID // field holding the reference
	Ref   int     // unresolvable id
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%v: field %v references unknown id %d", e.Kind, e.Field, e.Ref)
}

// ValidationError is one broken rule on one field of one item. Validation
// errors are accumulated, never fatal to the edit session.
type ValidationError struct {
	Field FieldID
	Rule  string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %v: %s", e.Field, e.Rule)
}

// ValidationErrors is the per-item set of broken rules.
type ValidationErrors struct {
	errs []ValidationError
}

// Add records a broken rule, ignoring exact duplicates.
func (v *ValidationErrors) Add(field FieldID, rule string) {
	for _, e := range v.errs {
		if e.Field == field && e.Rule == rule {
			return
		}
	}
	v.errs = append(v.errs, ValidationError{Field: field, Rule: rule})
}

// Has reports whether any rule is recorded against the given field.
func (v *ValidationErrors) Has(field FieldID) bool {
	for _, e := range v.errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Clear drops every recorded error.
func (v *ValidationErrors) Clear() { v.errs = v.errs[:0] }

// Empty reports whether no error is recorded.
func (v *ValidationErrors) Empty() bool { return len(v.errs) == 0 }

// All returns the recorded errors in insertion order.
func (v *ValidationErrors) All() []ValidationError { return v.errs }

func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.errs))
	for _, e := range v.errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
