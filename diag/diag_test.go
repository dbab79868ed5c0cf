package diag

import (
	"strings"
	"testing"

	"github.com/mdsl-lang/mdslc/sourcemap"
)

func TestSink_HasErrorsAndCounts(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatal("empty sink should have no errors")
	}
	s.Warnf(sourcemap.Span{}, KindOverlappingOverridePeriod, "overlap")
	if s.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}
	s.Errorf(sourcemap.Span{}, KindDuplicateOutletID, "duplicate outlet %d", 7)
	if !s.HasErrors() {
		t.Fatal("expected HasErrors true after Errorf")
	}
	errs, warns := s.Counts()
	if errs != 1 || warns != 1 {
		t.Fatalf("Counts() = (%d, %d), want (1, 1)", errs, warns)
	}
}

func TestSink_Merge(t *testing.T) {
	a := NewSink()
	a.Errorf(sourcemap.Span{}, KindDuplicateName, "a")
	b := NewSink()
	b.Warnf(sourcemap.Span{}, KindShadowedVariable, "b")

	a.Merge(b)
	if len(a.All()) != 2 {
		t.Fatalf("expected 2 diagnostics after merge, got %d", len(a.All()))
	}

	// Merging a nil Sink is a no-op, not a panic.
	a.Merge(nil)
	if len(a.All()) != 2 {
		t.Fatalf("expected merge of nil to be a no-op, got %d diagnostics", len(a.All()))
	}
}

func TestDiagnostic_Error(t *testing.T) {
	s := NewSink()
	s.Errorf(sourcemap.Span{}, KindUndefinedOutlet, "outlet %d not found", 999999)
	msg := s.All()[0].Error()
	if !strings.Contains(msg, "UndefinedOutlet") || !strings.Contains(msg, "999999") {
		t.Fatalf("unexpected diagnostic message: %q", msg)
	}
}
