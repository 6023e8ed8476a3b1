package diagnostics

import (
	"testing"

	"github.com/catapillie/marin/internal/token"
	"github.com/stretchr/testify/assert"
)

func tok(line, col int) token.Token {
	return token.Token{Span: token.Span{File: "a.mar", Start: token.Position{Line: line, Column: col}}}
}

func TestBatchHasErrors(t *testing.T) {
	var b Batch
	assert.False(t, b.HasErrors())

	b.Add(NewWarning(FileReimported, "dependency", tok(1, 1), "file reimported"))
	assert.False(t, b.HasErrors())

	b.Add(NewError(DependencyCycle, "dependency", tok(2, 1), "cycle detected"))
	assert.True(t, b.HasErrors())
}

func TestBatchSortedIsDeterministic(t *testing.T) {
	var b Batch
	b.Add(NewError(TypeMismatch, "typecheck", tok(5, 1), "c"))
	b.Add(NewError(TypeMismatch, "typecheck", tok(1, 1), "a"))
	b.Add(NewError(TypeMismatch, "typecheck", tok(3, 1), "b"))

	sorted := b.Sorted()
	assert.Equal(t, []string{"a", "b", "c"}, []string{
		sorted[0].Message, sorted[1].Message, sorted[2].Message,
	})
}

func TestReportJSONRoundTripsData(t *testing.T) {
	r := NewError(TypeMismatch, "typecheck", tok(1, 1), "int vs string").
		WithData("left", "Int").
		WithData("right", "String").
		WithNote("declared here")

	text, err := r.ToJSON(false)
	assert.NoError(t, err)
	assert.Contains(t, text, `"code":"type_mismatch"`)
	assert.Contains(t, text, `"declared here"`)
}
