// Command mdsl is the MDSL compiler front end: lex, parse, validate and
// emit SQL or Cypher from a media-outlet lineage description.
//
// Grounded on cmd/pflow/main.go's flag-based subcommand dispatch: one
// func(args []string) error per subcommand, a top-level switch, and
// exit codes returned through os.Exit rather than panics. Exit codes
// follow spec.md §6: 0 success, 1 diagnostic error, 2 I/O error, 3
// internal invariant violation.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitDiagnostic)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "lex":
		err = lexCmd(args)
	case "parse":
		err = parseCmd(args)
	case "validate":
		err = validateCmd(args)
	case "sql":
		err = sqlCmd(args)
	case "cypher":
		err = cypherCmd(args)
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Println("mdsl version 0.1.0")
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(exitDiagnostic)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "mdsl: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func printUsage() {
	fmt.Println(`mdsl - media outlet modeling language compiler

Usage:
  mdsl <command> [options] <file.mdsl>

Commands:
  lex        Print the token stream for a file
  parse      Print each parsed file's path, imports and declaration counts (no full AST dump)
  validate   Run semantic analysis and report diagnostics
  sql        Emit SQL DDL + DML for a program
  cypher     Emit Cypher CREATE statements for a program
  help       Show this help message
  version    Show version information

Examples:
  mdsl validate outlets.mdsl
  mdsl sql --dialect postgres --output schema.sql outlets.mdsl
  mdsl cypher --prefix mdsl_ outlets.mdsl

For command-specific help, run:
  mdsl <command> --help`)
}
