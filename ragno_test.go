package ragno

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/config"
	"github.com/ragno-ai/ragno/pkg/search"
	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/types"
)

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fixedEmbedder) Dimensions() int { return len(f.vector) }
func (f *fixedEmbedder) Close() error    { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{Driver: "memory"},
		Index: config.IndexConfig{Dimension: 4, Metric: "cosine"},
		Search: config.SearchConfig{
			DefaultGraph:     "http://example.org/graph/test",
			DefaultThreshold: 0.7,
			Alpha:            0.15,
			MaxIterations:    50,
		},
	}
}

func newTestClient(t *testing.T) (*Client, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	st.AddNode("http://example.org/graph/test", &types.Node{
		ID:    "http://example.org/entity/beer-brewing",
		Type:  types.EntityNodeType,
		Label: "Beer Brewing",
	})

	client, err := NewClient(st, &fixedEmbedder{vector: []float32{1, 0, 0, 0}}, nil, testConfig(), nil)
	require.NoError(t, err)
	return client, st
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Index.Dimension = 0

	_, err := NewClient(store.NewMemoryStore(), &fixedEmbedder{vector: []float32{1}}, nil, cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, &types.ConfigurationError{})

	_, err = NewClient(store.NewMemoryStore(), &fixedEmbedder{vector: []float32{1}}, nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, &types.ConfigurationError{})
}

func TestOpenRequiresStoreEndpointForNeo4j(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "neo4j"
	cfg.Store.URI = ""

	_, err := Open(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoStoreEndpoint)
}

func TestIndexTextThenSearch(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close(context.Background())

	require.NoError(t, client.IndexText(context.Background(),
		"http://example.org/entity/beer-brewing", "Beer Brewing"))

	results, err := client.Search(context.Background(), "beer brewing", &search.Options{
		Mode: search.ModeSimilarity,
	})
	require.NoError(t, err)
	require.Len(t, results.Candidates, 1)
	assert.Equal(t, "http://example.org/entity/beer-brewing", results.Candidates[0].ID)
	assert.Equal(t, "Beer Brewing", results.Candidates[0].Label)
}

func TestUpsertAndRemoveEmbedding(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close(context.Background())

	id := "http://example.org/entity/beer-brewing"
	require.NoError(t, client.UpsertEmbedding(id, []float32{1, 0, 0, 0}))

	results, err := client.Search(context.Background(), "beer", &search.Options{Mode: search.ModeSimilarity})
	require.NoError(t, err)
	require.Len(t, results.Candidates, 1)

	require.NoError(t, client.RemoveEmbedding(id))
	results, err = client.Search(context.Background(), "beer", &search.Options{Mode: search.ModeSimilarity})
	require.NoError(t, err)
	assert.Empty(t, results.Candidates)

	// Removing twice is a no-op.
	require.NoError(t, client.RemoveEmbedding(id))
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close(context.Background())

	err := client.UpsertEmbedding("x", []float32{1, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, &types.DimensionMismatchError{})
}

func TestSearchContextRendersPromptBlock(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close(context.Background())

	require.NoError(t, client.UpsertEmbedding("http://example.org/entity/beer-brewing", []float32{1, 0, 0, 0}))

	block, err := client.SearchContext(context.Background(), "beer brewing", &search.Options{
		Mode: search.ModeSimilarity,
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(block, "<ENTITIES>"))
	assert.True(t, strings.Contains(block, "Beer Brewing"))
}
