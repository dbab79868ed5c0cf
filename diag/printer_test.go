package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mdsl-lang/mdslc/sourcemap"
)

func TestPrinter_PrintAll(t *testing.T) {
	sm := sourcemap.New()
	id := sm.LoadString("t.mdsl", "FAMILY \"F\" {\n  BAD\n}")

	s := NewSink()
	s.Errorf(sourcemap.Span{File: id, Start: 15, End: 18}, KindUnexpectedToken, "unexpected token")

	var buf bytes.Buffer
	p := NewPrinter(&buf, sm)
	p.PrintAll(s)

	out := buf.String()
	if !strings.Contains(out, "t.mdsl:2:3") {
		t.Fatalf("expected location t.mdsl:2:3, got:\n%s", out)
	}
	if !strings.Contains(out, "unexpected token") {
		t.Fatalf("expected message in output, got:\n%s", out)
	}
	if !strings.Contains(out, "^^^") {
		t.Fatalf("expected caret underline, got:\n%s", out)
	}
}

func TestPrinter_UnknownSpan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, nil)
	s := NewSink()
	s.Warnf(sourcemap.Span{}, KindOverlappingOverridePeriod, "overlap")
	p.PrintAll(s)

	if !strings.Contains(buf.String(), "<unknown>") {
		t.Fatalf("expected <unknown> location with nil sourcemap, got:\n%s", buf.String())
	}
}
