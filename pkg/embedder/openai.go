package embedder

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragno-ai/ragno/pkg/types"
)

// DefaultDimensions matches text-embedding-3-small.
const DefaultDimensions = 1536

// OpenAIClient implements Client against the OpenAI embeddings API or any
// OpenAI-compatible endpoint (set Config.BaseURL).
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates an embedding client.
func NewOpenAIClient(config Config) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}
	if config.Dimensions <= 0 {
		config.Dimensions = DefaultDimensions
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	// Newlines degrade embedding quality on some models.
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = strings.ReplaceAll(t, "\n", " ")
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: cleaned,
		Model: openai.EmbeddingModel(c.config.Model),
	})
	if err != nil {
		return nil, types.NewConnectivityError("embedding service", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (c *OpenAIClient) Dimensions() int { return c.config.Dimensions }

func (c *OpenAIClient) Close() error { return nil }
