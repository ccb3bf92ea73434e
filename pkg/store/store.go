// Package store defines the graph store read interface the retrieval engine
// consumes, with an in-memory implementation for tests and local use and a
// Neo4j-backed implementation for production.
//
// The engine never writes through this interface; ingestion owns the write
// path.
package store

import (
	"context"

	"github.com/ragno-ai/ragno/pkg/types"
)

// MatchOptions constrains a textual node query.
type MatchOptions struct {
	// Types restricts hits to the given node types. Empty means no
	// restriction.
	Types []types.NodeType

	// Limit caps the number of returned nodes. Non-positive means the
	// store's default.
	Limit int
}

// DefaultMatchLimit bounds textual queries that do not set their own limit.
const DefaultMatchLimit = 100

// GraphStore is the read-only view of a named graph. Implementations must
// surface timeouts and unreachable backends as *types.ConnectivityError so
// the orchestrator can degrade instead of failing the whole query.
type GraphStore interface {
	// MatchNodes returns nodes in graph whose label or content contains
	// text (already normalized by the caller). Zero matches is a nil error
	// with an empty slice.
	MatchNodes(ctx context.Context, graph, text string, opts *MatchOptions) ([]*types.Node, error)

	// GetNodes resolves ids to nodes. Unknown ids are silently skipped.
	GetNodes(ctx context.Context, graph string, ids []string) ([]*types.Node, error)

	// Edges returns the full edge list of graph, used to build traversal
	// adjacency.
	Edges(ctx context.Context, graph string) ([]types.Edge, error)

	// NodeEdges returns the edges touching id in either direction, used
	// for one-hop context enrichment.
	NodeEdges(ctx context.Context, graph, id string) ([]types.Edge, error)

	Close() error
}
