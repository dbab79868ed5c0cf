package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mdsl-lang/mdslc/lang/ast"
)

func validateCmd(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Log pipeline progress to stderr")
	noWarnOverlap := fs.Bool("no-warn-overlap", false, "Silence overlapping OVERRIDE period warnings")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mdsl validate [options] <file.mdsl>

Resolve imports, run semantic analysis, and report every diagnostic.
Flags must precede the file argument.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mdsl validate outlets.mdsl
  mdsl validate --no-warn-overlap outlets.mdsl
`)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("source file required")
	}
	path := fs.Arg(0)

	sess := newSession("ansi", "", true, !*noWarnOverlap, *verbose)
	logRunStart(sess, "validate")
	prog, err := sess.Load(context.Background(), path)
	if err != nil {
		return err
	}
	sym := sess.Analyze(prog)

	errCount, warnCount := sess.Diags.Counts()
	reportDiagnostics(sess.Diags, sess)

	outletCount := len(sym.OutletsByID)
	relCount := countRelationships(prog)

	fmt.Printf("\n%s file%s, %s outlet%s, %s relationship%s, %s error%s, %s warning%s\n",
		humanize.Comma(int64(len(prog.Files))), plural(len(prog.Files)),
		humanize.Comma(int64(outletCount)), plural(outletCount),
		humanize.Comma(int64(relCount)), plural(relCount),
		humanize.Comma(int64(errCount)), plural(errCount),
		humanize.Comma(int64(warnCount)), plural(warnCount))

	if sess.Diags.HasErrors() {
		fmt.Println("validate FAILED")
		return fmt.Errorf("%d error diagnostic(s)", errCount)
	}
	fmt.Println("validate PASSED")
	return nil
}

// countRelationships tallies every DIACHRONIC_LINK and SYNCHRONOUS_LINK
// across all families, for the summary line's relationship count.
func countRelationships(prog *ast.Program) int {
	n := 0
	for _, f := range prog.Files {
		for _, stmt := range f.Statements {
			fam, ok := stmt.(*ast.Family)
			if !ok {
				continue
			}
			n += len(fam.DiachronicLinks) + len(fam.SynchronousLinks)
		}
	}
	return n
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
