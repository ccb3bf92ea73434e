package ragno

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ragno-ai/ragno/pkg/config"
	"github.com/ragno-ai/ragno/pkg/embedder"
	"github.com/ragno-ai/ragno/pkg/extractor"
	"github.com/ragno-ai/ragno/pkg/search"
	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/telemetry"
	"github.com/ragno-ai/ragno/pkg/types"
	"github.com/ragno-ai/ragno/pkg/vectorindex"
)

// Ragno is the main interface for querying a knowledge-graph memory layer.
// It fuses exact matching, vector similarity, and graph traversal into one
// ranked answer set, and exposes the index maintenance hooks the ingestion
// side needs.
type Ragno interface {
	// Search runs a retrieval query. Options may be nil for defaults.
	Search(ctx context.Context, query string, opts *search.Options) (*types.ResultSet, error)

	// SearchContext runs a query and renders the results as a grounding
	// block ready to splice into an LLM prompt.
	SearchContext(ctx context.Context, query string, opts *search.Options) (string, error)

	// IndexText embeds text and upserts the vector under id.
	IndexText(ctx context.Context, id, text string) error

	// UpsertEmbedding inserts or replaces a precomputed vector.
	UpsertEmbedding(id string, vector []float32) error

	// RemoveEmbedding drops id from the vector index. Unknown ids are a no-op.
	RemoveEmbedding(id string) error

	// Close releases all backing resources.
	Close(ctx context.Context) error
}

// Client is the main implementation of the Ragno interface.
type Client struct {
	store     store.GraphStore
	index     *vectorindex.Index
	embedder  embedder.Client
	extractor extractor.Client
	searcher  *search.Searcher
	recorder  *telemetry.Recorder
	config    *config.Config
	logger    *slog.Logger
}

var _ Ragno = (*Client)(nil)

// NewClient assembles a client from already-constructed components. The
// extractor may be nil; free-text traversal then seeds from the raw query.
func NewClient(st store.GraphStore, embed embedder.Client, extract extractor.Client, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, &types.ConfigurationError{Field: "config", Err: fmt.Errorf("nil config")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	metric, err := parseMetric(cfg.Index.Metric)
	if err != nil {
		return nil, err
	}

	index, err := vectorindex.New(vectorindex.Config{
		Dimension:      cfg.Index.Dimension,
		M:              cfg.Index.M,
		EfConstruction: cfg.Index.EfConstruction,
		EfSearch:       cfg.Index.EfSearch,
		Metric:         metric,
	})
	if err != nil {
		return nil, err
	}

	searcher := search.NewSearcher(st, index, embed, extract, search.Config{
		DefaultGraph:  cfg.Search.DefaultGraph,
		AllowedTypes:  cfg.Search.NodeTypes(),
		MethodTimeout: time.Duration(cfg.Search.MethodTimeout) * time.Second,
		Alpha:         cfg.Search.Alpha,
		MaxIterations: cfg.Search.MaxIterations,
		Metric:        metric,
	}, logger)

	client := &Client{
		store:     st,
		index:     index,
		embedder:  embed,
		extractor: extract,
		searcher:  searcher,
		config:    cfg,
		logger:    logger,
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.ParquetPath != "" {
		recorder, err := telemetry.NewRecorder(cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, fmt.Errorf("initializing telemetry: %w", err)
		}
		client.recorder = recorder
	}

	return client, nil
}

// Open builds every component from configuration: the graph store, the
// embedding client with its caching and circuit-breaking wrappers, and the
// extraction client.
func Open(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, &types.ConfigurationError{Field: "config", Err: fmt.Errorf("nil config")}
	}
	if logger == nil {
		logger = slog.Default()
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	embed, err := openEmbedder(cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	var extract extractor.Client
	if cfg.Extraction.APIKey != "" {
		extract = extractor.NewLLMClient(extractor.Config{
			Model:   cfg.Extraction.Model,
			APIKey:  cfg.Extraction.APIKey,
			BaseURL: cfg.Extraction.BaseURL,
		})
	}

	client, err := NewClient(st, embed, extract, cfg, logger)
	if err != nil {
		embed.Close()
		st.Close()
		return nil, err
	}
	return client, nil
}

func openStore(cfg *config.Config) (store.GraphStore, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "neo4j":
		return store.NewNeo4jStore(cfg.Store.URI, cfg.Store.Username, cfg.Store.Password, cfg.Store.Database)
	default:
		return nil, &types.ConfigurationError{
			Field: "store.driver",
			Err:   fmt.Errorf("unknown driver %q", cfg.Store.Driver),
		}
	}
}

// openEmbedder builds the embedding chain. Wrapping order matters: the
// breaker sits next to the remote call so cache hits never count against it,
// and the dimension guard is outermost so every consumer sees repaired
// vectors.
func openEmbedder(cfg *config.Config, logger *slog.Logger) (embedder.Client, error) {
	var embed embedder.Client = embedder.NewOpenAIClient(embedder.Config{
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})

	if cfg.CircuitBreaker.Enabled {
		embed = embedder.NewCircuitBreakerClient(embed, embedder.BreakerSettings{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, "embedding", logger)
	}

	if cfg.Embedding.CachePath != "" {
		cached, err := embedder.NewCachingClient(embed, cfg.Embedding.Model, cfg.Embedding.CachePath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening embedding cache: %w", err)
		}
		embed = cached
	}

	return embedder.NewDimensionGuard(embed, cfg.Index.Dimension, logger), nil
}

func parseMetric(name string) (vectorindex.Metric, error) {
	switch name {
	case "", "cosine":
		return vectorindex.Cosine, nil
	case "dot":
		return vectorindex.DotProduct, nil
	default:
		return "", &types.ConfigurationError{
			Field: "index.metric",
			Err:   fmt.Errorf("unknown metric %q", name),
		}
	}
}

// Search implements Ragno.
func (c *Client) Search(ctx context.Context, query string, opts *search.Options) (*types.ResultSet, error) {
	results, err := c.searcher.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if c.recorder != nil {
		c.recorder.Record(results)
	}
	return results, nil
}

// SearchContext implements Ragno.
func (c *Client) SearchContext(ctx context.Context, query string, opts *search.Options) (string, error) {
	results, err := c.Search(ctx, query, opts)
	if err != nil {
		return "", err
	}
	return search.ResultSetToContextString(results)
}

// IndexText implements Ragno.
func (c *Client) IndexText(ctx context.Context, id, text string) error {
	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return err
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embedding service returned no vector for %q", id)
	}
	return c.index.Insert(id, vectors[0])
}

// UpsertEmbedding implements Ragno.
func (c *Client) UpsertEmbedding(id string, vector []float32) error {
	return c.index.Insert(id, vector)
}

// RemoveEmbedding implements Ragno.
func (c *Client) RemoveEmbedding(id string) error {
	return c.index.Remove(id)
}

// Index exposes the vector index for bulk loading.
func (c *Client) Index() *vectorindex.Index {
	return c.index
}

// Store exposes the backing graph store.
func (c *Client) Store() store.GraphStore {
	return c.store
}

// Close implements Ragno. Components are closed in reverse dependency order;
// the first error wins but every component still gets its Close call.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.recorder != nil {
		record(c.recorder.Close())
	}
	if c.extractor != nil {
		record(c.extractor.Close())
	}
	if c.embedder != nil {
		record(c.embedder.Close())
	}
	if c.store != nil {
		record(c.store.Close())
	}
	return firstErr
}
