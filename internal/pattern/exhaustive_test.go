package pattern

import (
	"testing"

	"github.com/catapillie/marin/internal/entity"
	"github.com/stretchr/testify/assert"
)

func optionUnion(entity.ID) []string { return []string{"Some", "None"} }

func TestIrrefutable(t *testing.T) {
	assert.True(t, Irrefutable(Discard{}))
	assert.True(t, Irrefutable(Binding{Name: "x"}))
	assert.True(t, Irrefutable(Tuple{Items: []Pattern{Discard{}, Binding{Name: "y"}}}))
	assert.False(t, Irrefutable(Literal{Kind: LitInt, Int: 1}))
	assert.False(t, Irrefutable(Variant{Tag: "Some"}))
	assert.False(t, Irrefutable(Tuple{Items: []Pattern{Discard{}, Literal{Kind: LitInt}}}))
}

func TestAnalyzeVariantExhaustive(t *testing.T) {
	const optID entity.ID = 1
	cases := []Pattern{
		Variant{UnionID: optID, Tag: "Some", Args: []Pattern{Binding{Name: "x"}}},
		Variant{UnionID: optID, Tag: "None"},
	}
	cov := Analyze(cases, optionUnion)
	assert.True(t, cov.Exhaustive)
	assert.Equal(t, 1, cov.ExhaustedAt)
	assert.Empty(t, cov.Unreachable)
}

func TestAnalyzeVariantNonExhaustive(t *testing.T) {
	const optID entity.ID = 1
	cases := []Pattern{
		Variant{UnionID: optID, Tag: "Some", Args: []Pattern{Binding{Name: "x"}}},
	}
	cov := Analyze(cases, optionUnion)
	assert.False(t, cov.Exhaustive)
}

func TestAnalyzeCatchAllMarksLaterCasesUnreachable(t *testing.T) {
	const optID entity.ID = 1
	cases := []Pattern{
		Discard{},
		Variant{UnionID: optID, Tag: "Some"},
	}
	cov := Analyze(cases, optionUnion)
	assert.True(t, cov.Exhaustive)
	assert.Equal(t, 0, cov.ExhaustedAt)
	assert.Equal(t, []int{1}, cov.Unreachable)
}

func TestAnalyzeBoolExhaustive(t *testing.T) {
	cases := []Pattern{
		Literal{Kind: LitBool, Bool: true},
		Literal{Kind: LitBool, Bool: false},
	}
	cov := Analyze(cases, optionUnion)
	assert.True(t, cov.Exhaustive)
}

func TestAnalyzeTupleColumnExhaustive(t *testing.T) {
	const optID entity.ID = 1
	cases := []Pattern{
		Tuple{Items: []Pattern{Variant{UnionID: optID, Tag: "Some"}, Discard{}}},
		Tuple{Items: []Pattern{Variant{UnionID: optID, Tag: "None"}, Discard{}}},
	}
	cov := Analyze(cases, optionUnion)
	assert.True(t, cov.Exhaustive)
}
