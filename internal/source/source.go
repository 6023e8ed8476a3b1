// Package source stages Marin source files from disk into the dense,
// append-only File table the rest of the toolchain operates over (§3's
// File: file_id, canonical_path, source_text, ast, is_from_std).
//
// Staging is deliberately the only place in the toolchain that touches the
// filesystem: the dependency analyzer, checker, and lowering stages all
// work against the in-memory Set produced here.
package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/catapillie/marin/internal/ast"
	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/parser"
)

// File is one staged source file: its dense id, canonical path, raw text,
// parsed AST, and whether it was staged from the built-in standard library
// root rather than a user-supplied path.
type File struct {
	ID            int
	CanonicalPath string
	Text          string
	AST           *ast.File
	IsFromStd     bool
}

// Set is the dense, append-only table of staged files, indexed both by id
// and by canonical path.
type Set struct {
	Files   []*File
	byPath  map[string]*File
}

// NewSet returns an empty staged-file set.
func NewSet() *Set {
	return &Set{byPath: make(map[string]*File)}
}

// Lookup finds a staged file by its canonical path.
func (s *Set) Lookup(canonicalPath string) (*File, bool) {
	f, ok := s.byPath[canonicalPath]
	return f, ok
}

// ByID returns the file with the given dense id.
func (s *Set) ByID(id int) *File {
	return s.Files[id]
}

// add parses src and appends a new File, assigning it the next dense id in
// staging order. Parse diagnostics are appended to batch; a file is staged
// regardless of parse errors, per the checker's "never throw away a
// subtree" policy (§7) carried back to the staging boundary.
func (s *Set) add(canonicalPath, text string, isStd bool, batch *diagnostics.Batch) *File {
	astFile, diags := parser.Parse(canonicalPath, text)
	batch.Merge(diags)
	f := &File{
		ID:            len(s.Files),
		CanonicalPath: canonicalPath,
		Text:          text,
		AST:           astFile,
		IsFromStd:     isStd,
	}
	s.Files = append(s.Files, f)
	s.byPath[canonicalPath] = f
	return f
}

// Canonicalize resolves path relative to the working directory and cleans
// it, so that the same file always staged under the same key regardless of
// how it was spelled on the command line or in an import query.
func Canonicalize(workingDir, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// Stage loads the standard library (if configured) followed by every
// user-listed file, in that order, per §6's CLI contract: "stages the
// built-in standard library ... and each listed .mar file". Staging order
// determines file_id assignment; it does not determine evaluation order,
// which the dependency analyzer computes separately.
func Stage(opts config.Options, userPaths []string) (*Set, *diagnostics.Batch, error) {
	set := NewSet()
	var batch diagnostics.Batch

	if opts.StdLibStaged() {
		if err := stageDir(set, opts.BuiltinRoot, true, &batch); err != nil {
			return nil, nil, fmt.Errorf("staging standard library: %w", err)
		}
	}

	if len(userPaths) == 0 {
		return nil, nil, fmt.Errorf("no input files")
	}

	for _, p := range userPaths {
		if !config.HasSourceExt(p) {
			return nil, nil, fmt.Errorf("%s: not a %s file", p, config.SourceFileExt)
		}
		canon, err := Canonicalize(opts.WorkingDir, p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		if _, already := set.Lookup(canon); already {
			continue
		}
		text, err := os.ReadFile(canon)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		set.add(canon, string(text), false, &batch)
	}

	return set, &batch, nil
}

// stageDir walks root and stages every .mar file found under it, in
// lexical (filepath.WalkDir) order, so that staging is deterministic
// across runs on the same tree.
func stageDir(set *Set, root string, isStd bool, batch *diagnostics.Batch) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !config.HasSourceExt(path) {
			return nil
		}
		canon, err := Canonicalize(root, path)
		if err != nil {
			return err
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		set.add(canon, string(text), isStd, batch)
		return nil
	})
}

// PreludePath returns the canonical path of the prelude file under root,
// used by the dependency analyzer to wire the implicit prelude edge
// (rule 9) once the standard library is staged.
func PreludePath(root string) (string, error) {
	return Canonicalize(root, config.PreludeFileName)
}
