package pagerank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/types"
)

const testGraph = "http://example.org/graph/test"

func chainStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	for _, id := range []string{"x", "y", "z"} {
		s.AddNode(testGraph, &types.Node{ID: id, Type: types.EntityNodeType, Label: id})
	}
	s.AddEdge(testGraph, types.Edge{Source: "x", Target: "y", Relation: "connects"})
	s.AddEdge(testGraph, types.Edge{Source: "y", Target: "z", Relation: "connects"})
	return s
}

func TestTraverseChainRanksSeedHighest(t *testing.T) {
	engine := NewEngine(chainStore(t), nil)

	candidates, err := engine.Traverse(context.Background(), testGraph, []string{"x"}, 0.15, 50)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	ranks := make(map[string]float64)
	for _, c := range candidates {
		ranks[c.ID] = c.Score
		assert.Equal(t, []types.SearchMethod{types.TraversalMethod}, c.Methods)
	}

	assert.Greater(t, ranks["x"], ranks["y"])
	assert.Greater(t, ranks["y"], ranks["z"])

	// Dangling mass flows back to the teleport vector, so total
	// probability is conserved.
	total := ranks["x"] + ranks["y"] + ranks["z"]
	assert.InDelta(t, 1.0, total, 1e-4)

	// Output is ordered by descending rank.
	assert.Equal(t, "x", candidates[0].ID)
	assert.Equal(t, "y", candidates[1].ID)
	assert.Equal(t, "z", candidates[2].ID)
}

func TestTraverseEmptySeeds(t *testing.T) {
	engine := NewEngine(chainStore(t), nil)

	candidates, err := engine.Traverse(context.Background(), testGraph, nil, 0.15, 50)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestTraverseAbsentSeedsIgnored(t *testing.T) {
	engine := NewEngine(chainStore(t), nil)

	// One absent seed contributes no mass; the present one still works.
	candidates, err := engine.Traverse(context.Background(), testGraph, []string{"missing", "x"}, 0.15, 50)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "x", candidates[0].ID)

	// All seeds absent yields empty, not an error.
	candidates, err = engine.Traverse(context.Background(), testGraph, []string{"missing", "also-missing"}, 0.15, 50)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestTraverseResolvesNodeMetadata(t *testing.T) {
	engine := NewEngine(chainStore(t), nil)

	candidates, err := engine.Traverse(context.Background(), testGraph, []string{"x"}, 0.15, 50)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, types.EntityNodeType, candidates[0].Type)
	assert.Equal(t, "x", candidates[0].Label)
}

func TestTraverseDeterministic(t *testing.T) {
	engine := NewEngine(chainStore(t), nil)

	first, err := engine.Traverse(context.Background(), testGraph, []string{"x"}, 0.15, 50)
	require.NoError(t, err)
	second, err := engine.Traverse(context.Background(), testGraph, []string{"x"}, 0.15, 50)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
}

func TestTraverseDefaultsAppliedForBadParameters(t *testing.T) {
	engine := NewEngine(chainStore(t), nil)

	candidates, err := engine.Traverse(context.Background(), testGraph, []string{"x"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "x", candidates[0].ID)
}

type failingEdgeStore struct {
	*store.MemoryStore
}

func (f *failingEdgeStore) Edges(ctx context.Context, graph string) ([]types.Edge, error) {
	return nil, types.NewConnectivityError("graph store", errors.New("connection refused"))
}

func TestTraversePropagatesStoreFailure(t *testing.T) {
	engine := NewEngine(&failingEdgeStore{chainStore(t)}, nil)

	_, err := engine.Traverse(context.Background(), testGraph, []string{"x"}, 0.15, 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.ConnectivityError{}))
}
