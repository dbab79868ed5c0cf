package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func sqlCmd(args []string) error {
	fs := flag.NewFlagSet("sql", flag.ExitOnError)
	dialect := fs.String("dialect", "ansi", "SQL dialect: ansi, postgres, or anmi")
	output := fs.String("output", "", "Write SQL to file instead of stdout")
	checkConstraints := fs.Bool("check-constraints", true, "Emit CHECK(...) constraints for CATEGORY fields")
	noWarnOverlap := fs.Bool("no-warn-overlap", false, "Silence overlapping OVERRIDE period warnings")
	verbose := fs.Bool("verbose", false, "Log pipeline progress to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mdsl sql [options] <file.mdsl>

Compile a program and emit its SQL schema and data as DDL + DML. Flags
must precede the file argument.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mdsl sql --output schema.sql outlets.mdsl
  mdsl sql --dialect postgres outlets.mdsl
  mdsl sql --dialect anmi outlets.mdsl
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

	sess := newSession(*dialect, "", *checkConstraints, !*noWarnOverlap, *verbose)
	logRunStart(sess, "sql")
	p, err := sess.Run(context.Background(), path)
	if err != nil {
		reportDiagnostics(sess.Diags, sess)
		return err
	}

	w, closeFn, err := openOutput(*output)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := fmt.Fprint(w, sess.EmitSQL(p)); err != nil {
		return err
	}

	if _, wc := sess.Diags.Counts(); wc > 0 {
		reportDiagnostics(sess.Diags, sess)
	}
	return nil
}
