package vectorindex

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/types"
)

func TestNewValidatesDimension(t *testing.T) {
	_, err := New(Config{Dimension: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.ConfigurationError{}))

	_, err = New(Config{Dimension: -3})
	require.Error(t, err)
}

func TestInsertRejectsMismatchedDimension(t *testing.T) {
	ix, err := New(Config{Dimension: 4})
	require.NoError(t, err)

	err = ix.Insert("http://example.org/a", []float32{1, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.DimensionMismatchError{}))
	assert.Equal(t, 0, ix.Len())
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	ix, err := New(Config{Dimension: 4})
	require.NoError(t, err)

	require.NoError(t, ix.Insert("a", []float32{1, 0, 0, 0}))
	require.NoError(t, ix.Insert("b", []float32{0.9, 0.1, 0, 0}))
	require.NoError(t, ix.Insert("c", []float32{0, 0, 0, 1}))

	results, err := ix.Search([]float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSearchEmptyIndex(t *testing.T) {
	ix, err := New(Config{Dimension: 3})
	require.NoError(t, err)

	results, err := ix.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchInvalidArguments(t *testing.T) {
	ix, err := New(Config{Dimension: 3})
	require.NoError(t, err)

	_, err = ix.Search([]float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, types.ErrInvalidK)

	_, err = ix.Search([]float32{1, 0}, 3)
	assert.True(t, errors.Is(err, &types.DimensionMismatchError{}))
}

func TestRemoveIsIdempotentAndFinal(t *testing.T) {
	ix, err := New(Config{Dimension: 2})
	require.NoError(t, err)

	require.NoError(t, ix.Insert("a", []float32{1, 0}))
	require.NoError(t, ix.Insert("b", []float32{0, 1}))

	require.NoError(t, ix.Remove("a"))
	require.NoError(t, ix.Remove("a")) // no-op
	require.NoError(t, ix.Remove("missing"))

	assert.Equal(t, 1, ix.Len())

	results, err := ix.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "a", r.ID)
	}
}

func TestInsertReplacesExistingVector(t *testing.T) {
	ix, err := New(Config{Dimension: 2})
	require.NoError(t, err)

	require.NoError(t, ix.Insert("a", []float32{1, 0}))
	require.NoError(t, ix.Insert("b", []float32{0.5, 0.5}))
	require.NoError(t, ix.Insert("a", []float32{0, 1}))

	assert.Equal(t, 2, ix.Len())

	results, err := ix.Search([]float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestDotProductMetric(t *testing.T) {
	ix, err := New(Config{Dimension: 2, Metric: DotProduct})
	require.NoError(t, err)

	require.NoError(t, ix.Insert("long", []float32{3, 0}))
	require.NoError(t, ix.Insert("short", []float32{1, 0}))

	results, err := ix.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Inner product rewards magnitude, unlike cosine.
	assert.Equal(t, "long", results[0].ID)
	assert.InDelta(t, 3.0, results[0].Score, 1e-6)
}

// Approximate recall: querying with a stored vector must surface that vector
// at or very near the top.
func TestRecallOnRandomVectors(t *testing.T) {
	const (
		dim = 16
		n   = 100
	)

	ix, err := New(Config{Dimension: dim})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()*2 - 1
		}
		vectors[i] = v
		require.NoError(t, ix.Insert(fmt.Sprintf("node-%d", i), v))
	}

	for i := 0; i < n; i += 5 {
		results, err := ix.Search(vectors[i], 3)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		found := false
		for _, r := range results {
			if r.ID == fmt.Sprintf("node-%d", i) {
				found = true
				break
			}
		}
		assert.True(t, found, "query %d did not recall its own vector", i)
	}
}

func TestConcurrentReaders(t *testing.T) {
	ix, err := New(Config{Dimension: 4})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		v := []float32{float32(i), 1, 0, 0}
		require.NoError(t, ix.Insert(fmt.Sprintf("n-%d", i), v))
	}

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				_, err := ix.Search([]float32{1, 1, 0, 0}, 5)
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}
