package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/mdsl-lang/mdslc/sourcemap"
)

// Printer renders diagnostics in the user-visible format from spec.md §7:
// severity, kind, file:line:col, a one-line message, and one line of
// source with a caret underline. Output is colorized when writing to a
// terminal and plain otherwise, following the same isatty/colorable
// detection the pack's CLI tools use.
type Printer struct {
	w      io.Writer
	color  bool
	sm     *sourcemap.Map
}

// NewPrinter builds a Printer over w. If w is *os.File and refers to a
// terminal, output is wrapped for ANSI color support; otherwise it is left
// plain (e.g. when redirected to a file or pipe).
func NewPrinter(w io.Writer, sm *sourcemap.Map) *Printer {
	p := &Printer{w: w, sm: sm}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		p.w = colorable.NewColorable(f)
		p.color = true
	}
	return p
}

func (p *Printer) colorize(code, s string) string {
	if !p.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Print renders a single diagnostic.
func (p *Printer) Print(d *Diagnostic) {
	sev := d.Severity.String()
	code := "33" // yellow, warning
	if d.Severity == SeverityError {
		code = "31" // red
	}
	loc := "<unknown>"
	if p.sm != nil && !d.Span.IsZero() {
		pos := p.sm.Position(d.Span.File, d.Span.Start)
		loc = fmt.Sprintf("%s:%d:%d", p.sm.Path(d.Span.File), pos.Line, pos.Column)
	}
	fmt.Fprintf(p.w, "%s: %s: %s: %s\n", loc, p.colorize(code, sev), string(d.Kind), d.Message)
	if p.sm != nil && !d.Span.IsZero() {
		line, caret := p.sm.Snippet(d.Span)
		fmt.Fprintf(p.w, "  %s\n  %s\n", line, p.colorize(code, caret))
	}
}

// PrintAll renders every diagnostic in a Sink, in order.
func (p *Printer) PrintAll(s *Sink) {
	for _, d := range s.All() {
		p.Print(d)
	}
}
