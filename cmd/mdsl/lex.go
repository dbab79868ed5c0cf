package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mdsl-lang/mdslc/lang/lexer"
	"github.com/mdsl-lang/mdslc/lang/token"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

func lexCmd(args []string) error {
	fs := flag.NewFlagSet("lex", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mdsl lex <file.mdsl>

Print the token stream of a single file (imports are not followed).

Examples:
  mdsl lex outlets.mdsl
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

	sm := sourcemap.New()
	fid, err := sm.Load(path)
	if err != nil {
		return err
	}
	l := lexer.New(fid, sm.Content(fid))
	for {
		tok := l.Next()
		pos := sm.Position(fid, tok.Span.Start)
		fmt.Printf("%4d:%-3d %s\n", pos.Line, pos.Column, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if errs := l.Errors(); errs.HasErrors() {
		n, _ := errs.Counts()
		return fmt.Errorf("%d lexical error(s)", n)
	}
	return nil
}
