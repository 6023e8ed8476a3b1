package depgraph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/depgraph"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/source"
)

// stage writes each of files (name -> text) into a fresh temp directory and
// stages every one of them as a user file, returning the set and the names'
// resolved ids for convenience.
func stage(t *testing.T, files map[string]string) (*source.Set, config.Options, map[string]int) {
	t.Helper()
	dir := t.TempDir()

	var paths []string
	for name, text := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
		paths = append(paths, path)
	}

	opts := config.Options{WorkingDir: dir}
	set, batch, err := source.Stage(opts, paths)
	require.NoError(t, err)
	require.False(t, batch.HasErrors(), "parse diagnostics: %v", batch.Sorted())

	byName := make(map[string]int, len(files))
	for name := range files {
		canon, err := source.Canonicalize(dir, name)
		require.NoError(t, err)
		f, ok := set.Lookup(canon)
		require.True(t, ok, "file %s was not staged", name)
		byName[name] = f.ID
	}

	return set, opts, byName
}

func TestAnalyzeOrdersASingleFileWithNoImports(t *testing.T) {
	set, opts, ids := stage(t, map[string]string{
		"main.mar": "0",
	})

	_, order, batch := depgraph.Analyze(set, opts)
	require.False(t, batch.HasErrors())
	require.Equal(t, []int{ids["main.mar"]}, order)
}

func TestAnalyzeOrdersDependencyBeforeDependent(t *testing.T) {
	set, opts, ids := stage(t, map[string]string{
		"main.mar": "import dep\n0",
		"dep.mar":  "1",
	})

	_, order, batch := depgraph.Analyze(set, opts)
	require.False(t, batch.HasErrors(), "diagnostics: %v", batch.Sorted())
	require.Equal(t, []int{ids["dep.mar"], ids["main.mar"]}, order)
}

func TestAnalyzeReportsSelfImportAsWarning(t *testing.T) {
	set, opts, _ := stage(t, map[string]string{
		"main.mar": "import main\n0",
	})

	_, _, batch := depgraph.Analyze(set, opts)
	require.False(t, batch.HasErrors())
	require.Contains(t, codes(batch.Sorted()), diagnostics.SelfDependency)
}

func TestAnalyzeReportsDependencyCycle(t *testing.T) {
	set, opts, _ := stage(t, map[string]string{
		"a.mar": "import b\n0",
		"b.mar": "import a\n0",
	})

	_, _, batch := depgraph.Analyze(set, opts)
	require.Contains(t, codes(batch.Sorted()), diagnostics.DependencyCycle)
}

func TestAnalyzeReportsUnresolvableImport(t *testing.T) {
	set, opts, _ := stage(t, map[string]string{
		"main.mar": "import doesNotExist\n0",
	})

	_, _, batch := depgraph.Analyze(set, opts)
	require.Contains(t, codes(batch.Sorted()), diagnostics.NoSuchDependency)
}

func TestAnalyzeReportsRedundantSuper(t *testing.T) {
	set, opts, _ := stage(t, map[string]string{
		"main.mar": "import sub.super.dep\n0",
		"dep.mar":  "1",
	})

	_, _, batch := depgraph.Analyze(set, opts)
	require.Contains(t, codes(batch.Sorted()), diagnostics.RedundantSuper)
}

func TestAnalyzeReportsFileReimported(t *testing.T) {
	set, opts, _ := stage(t, map[string]string{
		"main.mar": "import dep\nimport dep\n0",
		"dep.mar":  "1",
	})

	_, _, batch := depgraph.Analyze(set, opts)
	require.Contains(t, codes(batch.Sorted()), diagnostics.FileReimported)
}

func TestAnalyzeReportsBuiltinImportWithoutStagedStdLib(t *testing.T) {
	set, opts, _ := stage(t, map[string]string{
		"main.mar": "import \"std\".list\n0",
	})

	_, _, batch := depgraph.Analyze(set, opts)
	require.Contains(t, codes(batch.Sorted()), diagnostics.NoSuchDependency)
}

func codes(reports []*diagnostics.Report) []diagnostics.Code {
	out := make([]diagnostics.Code, len(reports))
	for i, r := range reports {
		out[i] = r.Code
	}
	return out
}
