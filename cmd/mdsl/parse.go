package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mdsl-lang/mdslc/lang/ast"
)

func parseCmd(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Log pipeline progress to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mdsl parse [options] <file.mdsl>

Resolve a file's import graph and print a summary of every declaration
parsed from it. Flags must precede the file argument.

Examples:
  mdsl parse outlets.mdsl
  mdsl parse --verbose outlets.mdsl
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

	sess := newSession("ansi", "", true, true, *verbose)
	logRunStart(sess, "parse")
	prog, err := sess.Load(context.Background(), path)
	if err != nil {
		return err
	}

	for _, f := range prog.Files {
		fmt.Printf("%s\n", f.Path)
		if len(f.Imports) > 0 {
			fmt.Printf("  imports:\n")
			for _, imp := range f.Imports {
				fmt.Printf("    %q\n", imp.Path)
			}
		}
		counts := countStatements(f.Statements)
		for _, kind := range []string{"Let", "Unit", "Vocabulary", "Catalog", "Source", "Template", "Family"} {
			if n := counts[kind]; n > 0 {
				fmt.Printf("  %-10s %d\n", kind, n)
			}
		}
	}

	hadErrors := reportDiagnostics(sess.Diags, sess)
	if hadErrors {
		return fmt.Errorf("parse completed with errors")
	}
	return nil
}

func countStatements(stmts []ast.Stmt) map[string]int {
	counts := map[string]int{}
	for _, s := range stmts {
		switch s.(type) {
		case *ast.Let:
			counts["Let"]++
		case *ast.Unit:
			counts["Unit"]++
		case *ast.Vocabulary:
			counts["Vocabulary"]++
		case *ast.Catalog:
			counts["Catalog"]++
		case *ast.Source:
			counts["Source"]++
		case *ast.Template:
			counts["Template"]++
		case *ast.Family:
			counts["Family"]++
		default:
			counts[fmt.Sprintf("%T", s)]++
		}
	}
	return counts
}
