package check_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catapillie/marin/internal/check"
	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/depgraph"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/source"
)

// stageAndCheck stages text as a single file (no standard library) and runs
// it through the real dependency analyzer and checker, returning every
// diagnostic the whole run produced. Exercising the checker against a real
// staged AST, rather than hand-built ir fixtures, catches anything a
// fixture-only test would miss by construction.
func stageAndCheck(t *testing.T, text string) []*diagnostics.Report {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.mar")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	opts := config.Options{WorkingDir: dir}
	set, parseBatch, err := source.Stage(opts, []string{path})
	require.NoError(t, err)
	require.False(t, parseBatch.HasErrors(), "parse diagnostics: %v", parseBatch.Sorted())

	_, order, depBatch := depgraph.Analyze(set, opts)
	require.False(t, depBatch.HasErrors(), "dependency diagnostics: %v", depBatch.Sorted())

	checker := check.New(set, opts)
	checker.CheckAll(order)

	all := checker.Batch
	all.Merge(depBatch)
	return all.Sorted()
}

func codes(reports []*diagnostics.Report) []diagnostics.Code {
	out := make([]diagnostics.Code, len(reports))
	for i, r := range reports {
		out[i] = r.Code
	}
	return out
}

func TestChecksCleanProgramWithoutDiagnostics(t *testing.T) {
	reports := stageAndCheck(t, `let f(x) => x; f(42)`)
	require.Empty(t, reports)
}

func TestReportsTypeMismatch(t *testing.T) {
	reports := stageAndCheck(t, `1 + "hello"`)
	require.NotEmpty(t, reports)
	require.Contains(t, codes(reports), diagnostics.TypeMismatch)
	require.Equal(t, diagnostics.Error, reports[0].Severity)
}

func TestReportsUnknownBinding(t *testing.T) {
	reports := stageAndCheck(t, `doesNotExist`)
	require.Contains(t, codes(reports), diagnostics.UnknownBinding)
}

func TestReportsRefutableLetPattern(t *testing.T) {
	reports := stageAndCheck(t, "let 1 => 2;\n0")
	require.Contains(t, codes(reports), diagnostics.RefutablePattern)
}

func TestReportsNoAdmissibleRecordForUnknownFields(t *testing.T) {
	reports := stageAndCheck(t, `{ x = 1, y = 2 }`)
	require.Contains(t, codes(reports), diagnostics.NoAdmissibleRecords)
}

func TestReportsAmbiguousRecordAcrossTwoCandidates(t *testing.T) {
	reports := stageAndCheck(t, `
record point2 { x: Int, y: Int }
record point2b { x: Int, y: Int }
{ x = 1, y = 2 }
`)
	require.Contains(t, codes(reports), diagnostics.AmbiguousRecord)
}

func TestReportsUninitializedFields(t *testing.T) {
	reports := stageAndCheck(t, `
record point { x: Int, y: Int }
{ x = 1 }
`)
	require.Contains(t, codes(reports), diagnostics.UninitializedFields)
}

func TestAcceptsExactlyOneAdmissibleRecord(t *testing.T) {
	reports := stageAndCheck(t, `
record point { x: Int, y: Int }
{ x = 1, y = 2 }
`)
	require.Empty(t, reports)
}

func TestReportsNonExhaustiveMatchAsWarning(t *testing.T) {
	reports := stageAndCheck(t, `
union option { none | some(Int) }
match some(1)
case none => 0
`)
	require.Contains(t, codes(reports), diagnostics.NonExhaustiveConditional)
	for _, r := range reports {
		if r.Code == diagnostics.NonExhaustiveConditional {
			require.Equal(t, diagnostics.Warning, r.Severity)
		}
	}
}

func TestAcceptsExhaustiveUnionMatch(t *testing.T) {
	reports := stageAndCheck(t, `
union option { none | some(Int) }
match some(1)
case none => 0
case some(x) => x
`)
	require.Empty(t, reports)
}

func TestReportsIncorrectVariantArgs(t *testing.T) {
	reports := stageAndCheck(t, `
union option { none | some(Int) }
match some(1)
case none => 0
case some(a, b) => a
`)
	require.Contains(t, codes(reports), diagnostics.IncorrectVariantArgs)
}

func TestGeneralizesPolymorphicIdentityAcrossUses(t *testing.T) {
	reports := stageAndCheck(t, `
let id(x) => x;
if id(true) then id(1) else id(2)
`)
	require.Empty(t, reports)
}
