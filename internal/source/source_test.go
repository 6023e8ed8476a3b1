package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/source"
)

func TestStageRejectsEmptyFileList(t *testing.T) {
	dir := t.TempDir()
	_, _, err := source.Stage(config.Options{WorkingDir: dir}, nil)
	require.Error(t, err)
}

func TestStageRejectsNonMarinExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.txt")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o644))

	_, _, err := source.Stage(config.Options{WorkingDir: dir}, []string{path})
	require.Error(t, err)
}

func TestStageAssignsDenseIDsInListedOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mar")
	b := filepath.Join(dir, "b.mar")
	require.NoError(t, os.WriteFile(a, []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("2"), 0o644))

	set, batch, err := source.Stage(config.Options{WorkingDir: dir}, []string{a, b})
	require.NoError(t, err)
	require.False(t, batch.HasErrors())
	require.Len(t, set.Files, 2)
	require.Equal(t, 0, set.Files[0].ID)
	require.Equal(t, 1, set.Files[1].ID)
	require.Equal(t, set.Files[0], set.ByID(0))
	require.Equal(t, set.Files[1], set.ByID(1))
	require.False(t, set.Files[0].IsFromStd)
}

func TestStageDeduplicatesTheSameFileListedTwice(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mar")
	require.NoError(t, os.WriteFile(a, []byte("1"), 0o644))

	set, _, err := source.Stage(config.Options{WorkingDir: dir}, []string{a, a})
	require.NoError(t, err)
	require.Len(t, set.Files, 1)
}

func TestLookupFindsAStagedFileByCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mar")
	require.NoError(t, os.WriteFile(a, []byte("1"), 0o644))

	set, _, err := source.Stage(config.Options{WorkingDir: dir}, []string{a})
	require.NoError(t, err)

	canon, err := source.Canonicalize(dir, "a.mar")
	require.NoError(t, err)
	found, ok := set.Lookup(canon)
	require.True(t, ok)
	require.Equal(t, a, found.CanonicalPath)

	_, ok = set.Lookup(filepath.Join(dir, "missing.mar"))
	require.False(t, ok)
}

// CanonicalizeAgreesOnRelativeAndAbsoluteSpellings asserts the same file
// resolves to the same key whether named relatively or absolutely, since
// Stage's deduplication (and the dependency analyzer's Set.Lookup) depend on
// that to recognize re-imports of the same file regardless of spelling.
func TestCanonicalizeAgreesOnRelativeAndAbsoluteSpellings(t *testing.T) {
	dir := t.TempDir()
	rel, err := source.Canonicalize(dir, "sub/a.mar")
	require.NoError(t, err)
	abs, err := source.Canonicalize(dir, filepath.Join(dir, "sub", "a.mar"))
	require.NoError(t, err)
	require.Equal(t, rel, abs)
}

func TestPreludePathJoinsRootAndPreludeFileName(t *testing.T) {
	root := t.TempDir()
	p, err := source.PreludePath(root)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, config.PreludeFileName), p)
}
