// Package embedder defines the text-to-vector client the retrieval engine
// consumes, with an OpenAI-compatible implementation and composable wrappers
// for dimension repair, persistent caching, and circuit breaking.
package embedder

import (
	"context"
	"log/slog"
)

// Client turns texts into embedding vectors.
type Client interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector length this client produces.
	Dimensions() int

	Close() error
}

// Config holds settings for an embedding client.
type Config struct {
	Model      string
	APIKey     string
	BaseURL    string
	Dimensions int
}

// DimensionGuard wraps a Client and reconciles every returned vector to the
// target dimension: short vectors are zero-padded, long ones truncated.
// Mismatches are repaired with a warning, never surfaced as failures.
type DimensionGuard struct {
	inner  Client
	dim    int
	logger *slog.Logger
}

// NewDimensionGuard wraps inner so its output always has dim dimensions.
func NewDimensionGuard(inner Client, dim int, logger *slog.Logger) *DimensionGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &DimensionGuard{inner: inner, dim: dim, logger: logger}
}

func (g *DimensionGuard) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := g.inner.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i, vec := range vectors {
		if len(vec) == g.dim {
			continue
		}
		g.logger.Warn("repairing embedding dimension",
			"got", len(vec), "want", g.dim)
		vectors[i] = repairDimension(vec, g.dim)
	}
	return vectors, nil
}

func (g *DimensionGuard) Dimensions() int { return g.dim }

func (g *DimensionGuard) Close() error { return g.inner.Close() }

// repairDimension pads with zeros or truncates so len(out) == dim.
func repairDimension(vec []float32, dim int) []float32 {
	if len(vec) >= dim {
		return vec[:dim]
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out
}
