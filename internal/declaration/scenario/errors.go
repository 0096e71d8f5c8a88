package scenario

import (
	"errors"
	"fmt"
	"strings"

	"ahliwaris/internal/declaration/family"
)

// Kind categorizes a structural violation.
type Kind string

const (
	KindUnknownScenario              Kind = "unknown_scenario"
	KindMissingRequiredField         Kind = "missing_required_field"
	KindInvalidHeir                  Kind = "invalid_heir"
	KindWrongDeceasedGender          Kind = "wrong_deceased_gender"
	KindWrongSpouseCount             Kind = "wrong_spouse_count"
	KindMissingRequiredDescendant    Kind = "missing_required_descendant"
	KindMissingRequiredRelative      Kind = "missing_required_relative"
	KindForbiddenRelationshipPresent Kind = "forbidden_relationship_present"
	KindVitalStatusMismatch          Kind = "vital_status_mismatch"
	KindUngroupedChild               Kind = "ungrouped_child"
	KindLineageConflict              Kind = "lineage_conflict"
	KindMissingDescendantRecord      Kind = "missing_descendant_record_for_deceased_child"
	KindOrphanedGrandchild           Kind = "orphaned_grandchild"
)

// noHeir marks a violation that is not about a particular heir.
const noHeir = -1

// ValidationError is one violated rule.
type ValidationError struct {
	Kind Kind
	// Field locates the offending input, e.g. "deceased.gender" or "heirs[2].lineage".
	Field string
	// HeirIndex is the position in the caller's heir list, or -1.
	HeirIndex int
	HeirName  string
	Message   string
	// Cause is the record-level error behind KindInvalidHeir.
	Cause error
}

func (e ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.HeirName != "" {
		fmt.Fprintf(&b, " (%s)", e.HeirName)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// ValidationErrors is the full set of violations found in one pass.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d violations: %s", len(es), strings.Join(msgs, "; "))
}

// Has reports whether any violation is of kind k.
func (es ValidationErrors) Has(k Kind) bool {
	for _, e := range es {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Kinds returns the distinct kinds in first-seen order.
func (es ValidationErrors) Kinds() []Kind {
	seen := make(map[Kind]struct{}, len(es))
	out := make([]Kind, 0, len(es))
	for _, e := range es {
		if _, ok := seen[e.Kind]; ok {
			continue
		}
		seen[e.Kind] = struct{}{}
		out = append(out, e.Kind)
	}
	return out
}

// AsValidationErrors extracts the violation set from err, if it carries one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var es ValidationErrors
	if errors.As(err, &es) {
		return es, true
	}
	return nil, false
}

// collector accumulates violations; validation never stops at the first one.
type collector struct {
	errs ValidationErrors
}

func (c *collector) add(kind Kind, field, format string, args ...any) {
	c.errs = append(c.errs, ValidationError{
		Kind:      kind,
		Field:     field,
		HeirIndex: noHeir,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (c *collector) addHeir(kind Kind, idx int, h family.Heir, field, format string, args ...any) {
	f := fmt.Sprintf("heirs[%d]", idx)
	if field != "" {
		f += "." + field
	}
	c.errs = append(c.errs, ValidationError{
		Kind:      kind,
		Field:     f,
		HeirIndex: idx,
		HeirName:  h.Name,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (c *collector) merge(other ValidationErrors) {
	c.errs = append(c.errs, other...)
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
