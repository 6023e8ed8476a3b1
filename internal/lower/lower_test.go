package lower_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catapillie/marin/internal/check"
	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/depgraph"
	"github.com/catapillie/marin/internal/lower"
	"github.com/catapillie/marin/internal/source"
	"github.com/catapillie/marin/internal/vm"
)

// run stages text as a single file (no standard library, so no implicit
// prelude import), checks it, lowers it, and executes it to completion,
// failing the test on any diagnostic or VM error. This exercises
// internal/lower end to end against the real checker and VM rather than
// hand-built ir.Module/entity.Table fixtures, the same way
// tests/functional_test.go exercises the whole pipeline through the CLI.
func run(t *testing.T, text string) vm.Value {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.mar")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	opts := config.Options{WorkingDir: dir}
	set, batch, err := source.Stage(opts, []string{path})
	require.NoError(t, err)
	require.False(t, batch.HasErrors(), "parse diagnostics: %v", batch.Sorted())

	graph, order, depBatch := depgraph.Analyze(set, opts)
	_ = graph
	require.False(t, depBatch.HasErrors(), "dependency diagnostics: %v", depBatch.Sorted())

	checker := check.New(set, opts)
	modules := checker.CheckAll(order)
	require.False(t, checker.Batch.HasErrors(), "check diagnostics: %v", checker.Batch.Sorted())

	module, err := lower.Lower(order, modules, checker.Entities)
	require.NoError(t, err)

	machine := vm.New(module)
	result, err := machine.Run()
	require.NoError(t, err)
	return result
}

func TestLowersIdentityFunctionCall(t *testing.T) {
	result := run(t, `let f(x) => x; f(42)`)
	require.Equal(t, vm.KindInt, result.Kind)
	require.Equal(t, int64(42), result.Int())
}

func TestLowersArithmeticAndComparison(t *testing.T) {
	result := run(t, `let square(x) => x * x; if square(3) < 12 then 1 else 0`)
	require.Equal(t, int64(1), result.Int())
}

func TestLowersConditionalBranches(t *testing.T) {
	result := run(t, `let abs(x) => if x < 0 then 0 - x else x; abs(0 - 7)`)
	require.Equal(t, int64(7), result.Int())
}

func TestLowersUnionMatchAndConstructors(t *testing.T) {
	result := run(t, `
union option { none | some(Int) }

let get_or(opt, default) =>
  match opt
  case none => default
  case some(x) => x;

get_or(some(42), 0)
`)
	require.Equal(t, int64(42), result.Int())
}

func TestLowersNonExhaustiveMatchDefaultsToUnit(t *testing.T) {
	result := run(t, `
union option { none | some(Int) }

match some(1)
case none => 0
`)
	require.Equal(t, vm.KindBundle, result.Kind)
}

func TestLowersRecursiveFunction(t *testing.T) {
	result := run(t, `
let fact(n) => if n < 2 then 1 else n * fact(n - 1);
fact(5)
`)
	require.Equal(t, int64(120), result.Int())
}

func TestLowersTupleConstruction(t *testing.T) {
	result := run(t, `
let fst(p) => match p case (a, b) => a;
fst((1, 2))
`)
	require.Equal(t, int64(1), result.Int())
}

func TestLowersClosureCapture(t *testing.T) {
	result := run(t, `
let adder(n) => do let add(x) => x + n; add end;
adder(10)(5)
`)
	require.Equal(t, int64(15), result.Int())
}
