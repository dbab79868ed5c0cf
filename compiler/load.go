package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mdsl-lang/mdslc/diag"
	"github.com/mdsl-lang/mdslc/lang/ast"
	"github.com/mdsl-lang/mdslc/lang/parser"
	"github.com/mdsl-lang/mdslc/sourcemap"
)

// ErrImportCycle and ErrAbsoluteImport distinguish the two ways
// LoadProgram can fail on the import graph itself, from a genuine
// I/O failure reading a file off disk (spec.md §6 exit codes 1 vs 2).
var (
	ErrImportCycle    = errors.New("import cycle detected")
	ErrAbsoluteImport = errors.New("absolute import path not allowed")
)

// loader resolves the import graph rooted at one file into an
// ast.Program whose Files are ordered imports-before-importer, per
// spec.md §6. A file's own imports load and parse concurrently via
// errgroup (spec.md §5 permits this); cycle detection walks the
// ancestor chain threaded through the recursion, since two branches of
// a diamond import can share a descendant without sharing an ancestor.
type loader struct {
	sm    *sourcemap.Map
	diags *diag.Sink

	mu       sync.Mutex
	files    map[string]*ast.File   // abs path -> parsed file
	errs     map[string]error       // abs path -> parse/IO error, if any
	inflight map[string]chan struct{} // abs path -> closed once parseOne finishes
	inOrder  map[string]bool          // abs path -> already appended to order
	order    []*ast.File
}

func newLoader(sm *sourcemap.Map, diags *diag.Sink) *loader {
	return &loader{
		sm:       sm,
		diags:    diags,
		files:    map[string]*ast.File{},
		errs:     map[string]error{},
		inflight: map[string]chan struct{}{},
		inOrder:  map[string]bool{},
	}
}

// LoadProgram parses rootPath and every file it transitively imports,
// returning an ast.Program with Files ordered so that every file
// precedes its importer.
func LoadProgram(ctx context.Context, sm *sourcemap.Map, diags *diag.Sink, rootPath string) (*ast.Program, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	ld := newLoader(sm, diags)
	if _, err := ld.resolve(ctx, filepath.Clean(abs), nil); err != nil {
		return nil, err
	}
	return &ast.Program{Files: ld.order}, nil
}

// resolve parses absPath (if not already cached) and recursively
// resolves every file it imports, then appends them to the program's
// file list in declaration order, ahead of absPath itself.
func (l *loader) resolve(ctx context.Context, absPath string, ancestors []string) (*ast.File, error) {
	for _, a := range ancestors {
		if a == absPath {
			return nil, fmt.Errorf("compiler: %w: %s", ErrImportCycle, absPath)
		}
	}

	f, err := l.load(ctx, absPath)
	if err != nil {
		return nil, err
	}

	childAncestors := append(append([]string{}, ancestors...), absPath)
	childPaths := make([]string, len(f.Imports))
	for i, imp := range f.Imports {
		childPath, perr := resolveImportPath(absPath, imp.Path)
		if perr != nil {
			return nil, perr
		}
		childPaths[i] = childPath
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, cp := range childPaths {
		cp := cp
		g.Go(func() error {
			_, err := l.resolve(gctx, cp, childAncestors)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, cp := range childPaths {
		l.appendOnce(cp)
	}
	l.appendOnce(absPath)

	return f, nil
}

// load parses absPath exactly once, regardless of how many files import
// it (a diamond import resolves to one shared *ast.File). Concurrent
// first-time requests for the same path block on a channel rather than
// double-parsing.
func (l *loader) load(ctx context.Context, absPath string) (*ast.File, error) {
	l.mu.Lock()
	if f, ok := l.files[absPath]; ok {
		err := l.errs[absPath]
		l.mu.Unlock()
		return f, err
	}
	if ch, ok := l.inflight[absPath]; ok {
		l.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		l.mu.Lock()
		f, err := l.files[absPath], l.errs[absPath]
		l.mu.Unlock()
		return f, err
	}
	ch := make(chan struct{})
	l.inflight[absPath] = ch
	l.mu.Unlock()

	f, err := l.parseOne(absPath)

	l.mu.Lock()
	l.files[absPath] = f
	l.errs[absPath] = err
	delete(l.inflight, absPath)
	close(ch)
	l.mu.Unlock()

	return f, err
}

func (l *loader) parseOne(absPath string) (*ast.File, error) {
	fid, err := l.sm.Load(absPath)
	if err != nil {
		return nil, err
	}
	f, perrs := parser.Parse(fid, absPath, l.sm.Content(fid))
	l.mu.Lock()
	l.diags.Merge(perrs)
	l.mu.Unlock()
	return f, nil
}

func (l *loader) appendOnce(absPath string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inOrder[absPath] {
		return
	}
	l.inOrder[absPath] = true
	l.order = append(l.order, l.files[absPath])
}

// resolveImportPath resolves an IMPORT statement's path relative to the
// file that declared it. Absolute import paths are rejected per
// spec.md §6.
func resolveImportPath(fromAbs, importPath string) (string, error) {
	if filepath.IsAbs(importPath) {
		return "", fmt.Errorf("compiler: %w: %q", ErrAbsoluteImport, importPath)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(fromAbs), importPath)), nil
}
