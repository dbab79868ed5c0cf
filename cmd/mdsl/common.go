package main

import (
	"io"
	"os"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/rs/zerolog"

	"github.com/mdsl-lang/mdslc/compiler"
	"github.com/mdsl-lang/mdslc/config"
	"github.com/mdsl-lang/mdslc/diag"
)

// newLogger builds a console logger writing to stderr, quiet unless
// -verbose is set, so normal runs don't interleave log lines with a
// command's stdout output.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isTerminal(os.Stderr)}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// newSession builds a compiler.Session from the flags every backend
// subcommand shares.
func newSession(dialect, cypherPrefix string, checkConstraints, warnOverlap, verbose bool) *compiler.Session {
	cfg := config.NewBuilder().
		WithDialect(config.ParseDialect(dialect)).
		WithCypherPrefix(cypherPrefix).
		WithSQLCheckConstraints(checkConstraints).
		WithWarnOverlappingOverrides(warnOverlap).
		Build()
	return compiler.New(cfg, newLogger(verbose))
}

// openOutput returns os.Stdout when outputFile is empty, else a newly
// created file at outputFile. The returned closer is a no-op for
// stdout so callers can always defer it.
func openOutput(outputFile string) (io.Writer, func() error, error) {
	if outputFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// reportDiagnostics prints every diagnostic in s through a diag.Printer
// and returns whether any were error-severity.
func reportDiagnostics(s *diag.Sink, sess *compiler.Session) bool {
	p := diag.NewPrinter(os.Stderr, sess.SM)
	p.PrintAll(s)
	return s.HasErrors()
}

// logRunStart writes a human-readable start banner to stderr when
// verbose; the formatted timestamp is CLI output only, not part of any
// emitted SQL/Cypher, so it doesn't affect a backend's byte-identical
// repeated-run determinism.
func logRunStart(sess *compiler.Session, command string) {
	sess.Log.Debug().Msgf("mdsl %s starting at %s", command, strftime.Format("%Y-%m-%d %H:%M:%S", time.Now()))
}
