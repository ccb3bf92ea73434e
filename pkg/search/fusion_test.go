package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/types"
	"github.com/ragno-ai/ragno/pkg/vectorindex"
)

func TestMergeKeepsMaxScoreAndUnionsProvenance(t *testing.T) {
	exact := []*types.Candidate{
		{ID: "n1", Type: types.EntityNodeType, Score: 1.0, Methods: []types.SearchMethod{types.ExactMethod}},
	}
	similarity := []*types.Candidate{
		{ID: "n1", Type: types.EntityNodeType, Score: 0.4, Methods: []types.SearchMethod{types.SimilarityMethod}},
	}

	merged := mergeCandidates([][]*types.Candidate{exact, similarity})
	require.Len(t, merged, 1)
	assert.Equal(t, 1.0, merged[0].Score)
	assert.Equal(t, []types.SearchMethod{types.ExactMethod, types.SimilarityMethod}, merged[0].Methods)
}

func TestMergeFillsMetadataFromAnyList(t *testing.T) {
	bare := []*types.Candidate{
		{ID: "n1", Score: 0.9, Methods: []types.SearchMethod{types.SimilarityMethod}},
	}
	annotated := []*types.Candidate{
		{ID: "n1", Type: types.UnitNodeType, Score: 0.2, Label: "A unit",
			Methods: []types.SearchMethod{types.TraversalMethod}},
	}

	merged := mergeCandidates([][]*types.Candidate{bare, annotated})
	require.Len(t, merged, 1)
	assert.Equal(t, types.UnitNodeType, merged[0].Type)
	assert.Equal(t, "A unit", merged[0].Label)
	assert.Equal(t, 0.9, merged[0].Score)
}

func TestNormalizeCosineSimilarity(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "a", Score: 1.0},
		{ID: "b", Score: 0.0},
		{ID: "c", Score: -1.0},
	}
	normalizeScores(types.SimilarityMethod, candidates, vectorindex.Cosine)

	assert.Equal(t, 1.0, candidates[0].Score)
	assert.Equal(t, 0.5, candidates[1].Score)
	assert.Equal(t, 0.0, candidates[2].Score)
}

func TestNormalizeDotProductSimilarity(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "a", Score: 12.0},
		{ID: "b", Score: 7.0},
		{ID: "c", Score: 2.0},
	}
	normalizeScores(types.SimilarityMethod, candidates, vectorindex.DotProduct)

	assert.Equal(t, 1.0, candidates[0].Score)
	assert.Equal(t, 0.5, candidates[1].Score)
	assert.Equal(t, 0.0, candidates[2].Score)
}

func TestNormalizeTraversalByRunMaximum(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "seed", Score: 0.4},
		{ID: "near", Score: 0.2},
		{ID: "far", Score: 0.1},
	}
	normalizeScores(types.TraversalMethod, candidates, vectorindex.Cosine)

	assert.Equal(t, 1.0, candidates[0].Score)
	assert.Equal(t, 0.5, candidates[1].Score)
	assert.InDelta(t, 0.25, candidates[2].Score, 1e-9)
}

func TestNormalizeExactIsIdentity(t *testing.T) {
	candidates := []*types.Candidate{{ID: "a", Score: 0.33}}
	normalizeScores(types.ExactMethod, candidates, vectorindex.Cosine)
	assert.Equal(t, 0.33, candidates[0].Score)
}

func TestFilterByType(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "e", Type: types.EntityNodeType, Score: 1},
		{ID: "u", Type: types.UnitNodeType, Score: 1},
	}

	filtered := filterByType(candidates, []types.NodeType{types.UnitNodeType})
	require.Len(t, filtered, 1)
	assert.Equal(t, "u", filtered[0].ID)

	// Empty filter means no restriction.
	unfiltered := filterByType([]*types.Candidate{
		{ID: "e", Type: types.EntityNodeType, Score: 1},
		{ID: "u", Type: types.UnitNodeType, Score: 1},
	}, nil)
	assert.Len(t, unfiltered, 2)
}

func TestFilterByTypeKeepsUnresolvedCandidates(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "typed", Type: types.EntityNodeType, Score: 1},
		{ID: "unresolved", Score: 1},
		{ID: "excluded", Type: types.UnitNodeType, Score: 1},
	}

	filtered := filterByType(candidates, []types.NodeType{types.EntityNodeType})
	require.Len(t, filtered, 2)
	assert.Equal(t, "typed", filtered[0].ID)
	assert.Equal(t, "unresolved", filtered[1].ID)
}

func TestFilterByThreshold(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "keep", Score: 0.7},
		{ID: "drop", Score: 0.69},
	}
	filtered := filterByThreshold(candidates, 0.7)
	require.Len(t, filtered, 1)
	assert.Equal(t, "keep", filtered[0].ID)
}

func TestSortCandidatesBreaksTiesByID(t *testing.T) {
	candidates := []*types.Candidate{
		{ID: "b", Score: 0.5},
		{ID: "a", Score: 0.5},
		{ID: "c", Score: 0.9},
	}
	sortCandidates(candidates)

	assert.Equal(t, "c", candidates[0].ID)
	assert.Equal(t, "a", candidates[1].ID)
	assert.Equal(t, "b", candidates[2].ID)
}
