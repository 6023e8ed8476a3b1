// Package config holds the small set of constants and explicit,
// caller-supplied configuration values shared across the toolchain. It
// deliberately carries no mutable package-level state that the checker or
// VM would read implicitly: the standard-library path and working
// directory are threaded as configuration, never consulted from process
// state below the CLI boundary.
package config

// SourceFileExt is the only recognized Marin source extension.
const SourceFileExt = ".mar"

// HasSourceExt reports whether path ends in the Marin source extension.
func HasSourceExt(path string) bool {
	return len(path) >= len(SourceFileExt) && path[len(path)-len(SourceFileExt):] == SourceFileExt
}

// TrimSourceExt removes a trailing ".mar" from name, if present.
func TrimSourceExt(name string) string {
	if HasSourceExt(name) {
		return name[:len(name)-len(SourceFileExt)]
	}
	return name
}

// PreludeFileName is the file, relative to the standard library root, that
// every non-std file implicitly imports once the standard library is
// staged (dependency rule: implicit prelude edge).
const PreludeFileName = "prelude" + SourceFileExt

// BuiltinRootQuery is the quoted segment naming the compiler-provided
// standard library root in an import query, e.g. "std".a.b.
const BuiltinRootQuery = "std"

// Options is the explicit configuration threaded into the dependency
// analyzer and the staging step.
type Options struct {
	// WorkingDir is the root all non-builtin import queries must resolve
	// under.
	WorkingDir string

	// BuiltinRoot is the directory backing the "std" built-in segment.
	// Empty means the standard library is not staged: built-in queries
	// fail to resolve and the implicit prelude edge does not apply.
	BuiltinRoot string
}

// StdLibStaged reports whether a built-in root directory was configured.
func (o Options) StdLibStaged() bool {
	return o.BuiltinRoot != ""
}
