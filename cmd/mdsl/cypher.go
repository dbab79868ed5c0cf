package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func cypherCmd(args []string) error {
	fs := flag.NewFlagSet("cypher", flag.ExitOnError)
	prefix := fs.String("prefix", "", "Node-label / relationship-type prefix")
	output := fs.String("output", "", "Write Cypher to file instead of stdout")
	noWarnOverlap := fs.Bool("no-warn-overlap", false, "Silence overlapping OVERRIDE period warnings")
	verbose := fs.Bool("verbose", false, "Log pipeline progress to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mdsl cypher [options] <file.mdsl>

Compile a program and emit CREATE/MATCH statements for loading it into
a property graph. Flags must precede the file argument.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mdsl cypher --output load.cypher outlets.mdsl
  mdsl cypher --prefix mdsl_ outlets.mdsl
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

	sess := newSession("ansi", *prefix, true, !*noWarnOverlap, *verbose)
	logRunStart(sess, "cypher")
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

	if _, err := fmt.Fprint(w, sess.EmitCypher(p)); err != nil {
		return err
	}

	if _, wc := sess.Diags.Counts(); wc > 0 {
		reportDiagnostics(sess.Diags, sess)
	}
	return nil
}
