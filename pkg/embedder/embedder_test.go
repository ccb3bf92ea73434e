package embedder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragno-ai/ragno/pkg/types"
)

type stubClient struct {
	vectors [][]float32
	err     error
	calls   int
	dim     int
}

func (s *stubClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vectors[i%len(s.vectors)]
	}
	return out, nil
}

func (s *stubClient) Dimensions() int { return s.dim }
func (s *stubClient) Close() error    { return nil }

func TestDimensionGuardPadsShortVectors(t *testing.T) {
	stub := &stubClient{vectors: [][]float32{{1, 2}}, dim: 4}
	guard := NewDimensionGuard(stub, 4, nil)

	vectors, err := guard.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, []float32{1, 2, 0, 0}, vectors[0])
	assert.Equal(t, 4, guard.Dimensions())
}

func TestDimensionGuardTruncatesLongVectors(t *testing.T) {
	stub := &stubClient{vectors: [][]float32{{1, 2, 3, 4, 5, 6}}, dim: 4}
	guard := NewDimensionGuard(stub, 4, nil)

	vectors, err := guard.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, vectors[0])
}

func TestDimensionGuardLeavesMatchingVectors(t *testing.T) {
	stub := &stubClient{vectors: [][]float32{{1, 2, 3}}, dim: 3}
	guard := NewDimensionGuard(stub, 3, nil)

	vectors, err := guard.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vectors[0])
}

func TestDimensionGuardPropagatesErrors(t *testing.T) {
	stub := &stubClient{err: types.NewConnectivityError("embedding service", errors.New("down"))}
	guard := NewDimensionGuard(stub, 3, nil)

	_, err := guard.Embed(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.ConnectivityError{}))
}

func TestCachingClientAvoidsRepeatCalls(t *testing.T) {
	stub := &stubClient{vectors: [][]float32{{0.5, -0.25, 3}}, dim: 3}
	cache, err := NewCachingClient(stub, "test-model", t.TempDir(), nil)
	require.NoError(t, err)
	defer cache.Close()

	first, err := cache.Embed(context.Background(), []string{"beer brewing"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, stub.calls)

	second, err := cache.Embed(context.Background(), []string{"beer brewing"})
	require.NoError(t, err)
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, 1, stub.calls, "second lookup must be served from cache")
}

func TestCachingClientPartialMiss(t *testing.T) {
	stub := &stubClient{vectors: [][]float32{{1, 0}}, dim: 2}
	cache, err := NewCachingClient(stub, "test-model", t.TempDir(), nil)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Embed(context.Background(), []string{"cached"})
	require.NoError(t, err)

	vectors, err := cache.Embed(context.Background(), []string{"cached", "fresh"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.NotNil(t, vectors[0])
	assert.NotNil(t, vectors[1])
	assert.Equal(t, 2, stub.calls)
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3.14159}
	assert.Equal(t, vec, decodeVector(encodeVector(vec)))
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	stub := &stubClient{err: errors.New("connection refused")}
	breaker := NewCircuitBreakerClient(stub, BreakerSettings{}, "test", nil)

	for i := 0; i < 5; i++ {
		_, _ = breaker.Embed(context.Background(), []string{"q"})
	}

	callsBefore := stub.calls
	_, err := breaker.Embed(context.Background(), []string{"q"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &types.ConnectivityError{}))
	assert.Equal(t, callsBefore, stub.calls, "open breaker must not reach the service")
}
