// Package ragno provides hybrid retrieval over knowledge-graph memory for Go.
//
// Ragno is the query side of an AI-agent memory layer: it combines exact text
// matching, approximate nearest-neighbor vector search, and personalized
// PageRank graph traversal, and fuses their results into one ranked,
// deduplicated answer set with per-method provenance.
//
// # Basic Usage
//
// Build a client from configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := ragno.Open(cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// or assemble it from components:
//
//	st := store.NewMemoryStore()
//	embed := embedder.NewOpenAIClient(embedder.Config{Model: "text-embedding-3-small", APIKey: key})
//	client, err := ragno.NewClient(st, embed, nil, cfg, slog.Default())
//
// # Searching
//
// A search dispatches the retrieval methods its mode calls for and fuses the
// results:
//
//	results, err := client.Search(ctx, "beer brewing", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, c := range results.Candidates {
//		fmt.Printf("%s  %.2f  %v\n", c.ID, c.Score, c.Methods)
//	}
//
// The default dual mode runs exact and similarity retrieval concurrently,
// then seeds a graph traversal with their union. Single-method modes
// (exact, similarity, traversal) are available through search.Options.
//
// # Degraded Results
//
// Backing-service failures degrade a query rather than fail it: a method
// whose service is unreachable is logged and skipped, and only when every
// dispatched method fails does the result carry the Degraded flag. An empty
// candidate list with Degraded unset means the graph genuinely holds no
// match.
//
// # Indexing
//
// The ingestion side feeds the vector index through the client:
//
//	err = client.IndexText(ctx, "http://example.org/entity/beer-brewing", "Beer Brewing")
//	err = client.UpsertEmbedding(id, vector)
//	err = client.RemoveEmbedding(id)
//
// # Architecture
//
// The library follows a modular architecture:
//
//   - pkg/store: Graph store abstraction (Neo4j, in-memory)
//   - pkg/vectorindex: In-process HNSW vector index
//   - pkg/search: Query classification, retrieval methods, score fusion
//   - pkg/pagerank: Personalized PageRank traversal
//   - pkg/embedder: Embedding client with caching and circuit breaking
//   - pkg/extractor: LLM-backed entity extraction for traversal seeding
//   - pkg/types: Core type definitions and the error taxonomy
//
// This design allows easy extension with additional store backends and
// embedding providers.
package ragno
