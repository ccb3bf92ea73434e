package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/types"
)

const testGraph = "http://example.org/graph/test"

func seededStore() *MemoryStore {
	s := NewMemoryStore()
	s.AddNode(testGraph, &types.Node{
		ID: "e1", Type: types.EntityNodeType, Label: "Beer Brewing",
	})
	s.AddNode(testGraph, &types.Node{
		ID: "e2", Type: types.EntityNodeType, Label: "Wine Tasting",
	})
	s.AddNode(testGraph, &types.Node{
		ID: "u1", Type: types.UnitNodeType, Content: "A short history of brewing",
	})
	s.AddEdge(testGraph, types.Edge{Source: "e1", Target: "u1", Relation: "mentionedIn"})
	s.AddEdge(testGraph, types.Edge{Source: "e1", Target: "e2", Relation: "relatesTo"})
	return s
}

func TestMatchNodesSearchesLabelAndContent(t *testing.T) {
	s := seededStore()

	nodes, err := s.MatchNodes(context.Background(), testGraph, "brewing", nil)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	ids := map[string]bool{}
	for _, n := range nodes {
		ids[n.ID] = true
	}
	assert.True(t, ids["e1"])
	assert.True(t, ids["u1"])
}

func TestMatchNodesIsCaseInsensitive(t *testing.T) {
	s := seededStore()

	nodes, err := s.MatchNodes(context.Background(), testGraph, "BREWING", &MatchOptions{
		Types: []types.NodeType{types.EntityNodeType},
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "e1", nodes[0].ID)
}

func TestMatchNodesRespectsLimit(t *testing.T) {
	s := seededStore()

	nodes, err := s.MatchNodes(context.Background(), testGraph, "brewing", &MatchOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestMatchNodesLimitedSubsetIsStable(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 50; i++ {
		s.AddNode(testGraph, &types.Node{
			ID:    fmt.Sprintf("e%02d", i),
			Type:  types.EntityNodeType,
			Label: "Brewing technique",
		})
	}

	first, err := s.MatchNodes(context.Background(), testGraph, "brewing", &MatchOptions{Limit: 5})
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.True(t, sort.SliceIsSorted(first, func(i, j int) bool { return first[i].ID < first[j].ID }))

	for i := 0; i < 10; i++ {
		again, err := s.MatchNodes(context.Background(), testGraph, "brewing", &MatchOptions{Limit: 5})
		require.NoError(t, err)
		require.Len(t, again, 5)
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID)
		}
	}
}

func TestMatchNodesUnknownGraphIsEmpty(t *testing.T) {
	s := seededStore()

	nodes, err := s.MatchNodes(context.Background(), "http://example.org/graph/other", "brewing", nil)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestGetNodesSkipsMissingIDs(t *testing.T) {
	s := seededStore()

	nodes, err := s.GetNodes(context.Background(), testGraph, []string{"e1", "missing", "u1"})
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestNodeEdgesMatchesEitherEndpoint(t *testing.T) {
	s := seededStore()

	edges, err := s.NodeEdges(context.Background(), testGraph, "u1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "mentionedIn", edges[0].Relation)

	edges, err = s.NodeEdges(context.Background(), testGraph, "e1")
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestCanceledContextIsConnectivityError(t *testing.T) {
	s := seededStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.MatchNodes(ctx, testGraph, "brewing", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.ConnectivityError{}))

	_, err = s.Edges(ctx, testGraph)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.ConnectivityError{}))
}
