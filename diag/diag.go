// Package diag implements the diagnostic model shared by every compiler
// pass: a severity-and-kind-tagged message anchored to a sourcemap.Span,
// accumulated in a Sink and rendered by a Printer.
//
// Grounded on validation.Validator's AddError/AddWarning accumulation
// pattern (teacher's validation package) for the Sink shape, and on
// mdsl-rs/src/error.rs for the Kind taxonomy.
package diag

import (
	"fmt"

	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Severity distinguishes a hard failure from an advisory.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind enumerates the error/warning taxonomy from spec.md §7. The string
// value is what gets printed; callers should not need to switch on it
// except in tests.
type Kind string

const (
	// Lexer
	KindUnexpectedChar      Kind = "UnexpectedChar"
	KindUnterminatedString  Kind = "UnterminatedString"
	KindUnterminatedComment Kind = "UnterminatedComment"
	KindInvalidNumber       Kind = "InvalidNumber"
	// Parser
	KindUnexpectedToken Kind = "UnexpectedToken"
	KindUnexpectedEOF   Kind = "UnexpectedEof"
	KindBadDateLiteral  Kind = "BadDateLiteral"
	// Name resolution
	KindDuplicateName     Kind = "DuplicateName"
	KindDuplicateOutletID Kind = "DuplicateOutletId"
	KindUndefinedVariable Kind = "UndefinedVariable"
	KindUndefinedOutlet   Kind = "UndefinedOutlet"
	KindUndefinedSource   Kind = "UndefinedSource"
	KindUndefinedEvent    Kind = "UndefinedEvent"
	KindUndefinedTemplate Kind = "UndefinedTemplate"
	KindImportCycle       Kind = "ImportCycle"
	KindShadowedVariable  Kind = "ShadowedVariable"
	// Type/category
	KindCategoryViolation Kind = "CategoryViolation"
	KindTypeMismatch      Kind = "TypeMismatch"
	KindFieldTypeUnknown  Kind = "FieldTypeUnknown"
	// Temporal
	KindOverlappingLifecycle      Kind = "OverlappingLifecycle"
	KindInvertedDateRange         Kind = "InvertedDateRange"
	KindOverlappingOverridePeriod Kind = "OverlappingOverridePeriod" // warning
	// Integrity
	KindDuplicateMetric Kind = "DuplicateMetric"
	KindStakeOutOfRange Kind = "StakeOutOfRange"
	// Emission
	KindUnrepresentableValue Kind = "UnrepresentableValue"
)

// Diagnostic is a single span-tagged error or warning.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Span     sourcemap.Span
	Message  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Message)
}

// Sink accumulates diagnostics across a pass without aborting it, so that a
// single run reports every problem it finds rather than just the first.
type Sink struct {
	items []*Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Errorf records an error-severity diagnostic.
func (s *Sink) Errorf(span sourcemap.Span, kind Kind, format string, args ...any) {
	s.items = append(s.items, &Diagnostic{Severity: SeverityError, Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning-severity diagnostic.
func (s *Sink) Warnf(span sourcemap.Span, kind Kind, format string, args ...any) {
	s.items = append(s.items, &Diagnostic{Severity: SeverityWarning, Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Add appends an already-constructed diagnostic (used when a helper built
// one itself, e.g. while merging a sub-pass's Sink into the session's).
func (s *Sink) Add(d *Diagnostic) { s.items = append(s.items, d) }

// Merge appends every diagnostic from other into s, in order.
func (s *Sink) Merge(other *Sink) {
	if other == nil {
		return
	}
	s.items = append(s.items, other.items...)
}

// All returns every accumulated diagnostic, in recorded order.
func (s *Sink) All() []*Diagnostic { return s.items }

// HasErrors reports whether any error-severity diagnostic was recorded.
// A batch exits non-zero exactly when this is true, per spec.md §7.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings recorded.
func (s *Sink) Counts() (errors, warnings int) {
	for _, d := range s.items {
		if d.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return
}
