package main

import (
	"errors"
	"io/fs"

	"github.com/mdsl-lang/mdslc/compiler"
)

// Exit codes per spec.md §6.
const (
	exitSuccess    = 0
	exitDiagnostic = 1
	exitIO         = 2
	exitInternal   = 3
)

// exitCodeFor maps a pipeline failure onto the exit-code taxonomy. A
// StageError from StageLoad is an I/O failure unless it's actually a
// malformed import graph (cycle or absolute path), which is a user
// mistake in the source, not a filesystem problem.
func exitCodeFor(err error) int {
	var se *compiler.StageError
	if errors.As(err, &se) {
		switch se.Stage {
		case compiler.StageLoad:
			if errors.Is(se.Err, compiler.ErrImportCycle) || errors.Is(se.Err, compiler.ErrAbsoluteImport) {
				return exitDiagnostic
			}
			return exitIO
		case compiler.StageAnalyze:
			return exitDiagnostic
		}
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return exitIO
	}
	return exitDiagnostic
}
