package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ragno-ai/ragno/pkg/types"
)

// MemoryStore is an in-memory GraphStore. It backs tests and the local CLI
// mode; production deployments use the Neo4j store.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]*memoryGraph
}

type memoryGraph struct {
	nodes map[string]*types.Node
	edges []types.Edge
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]*memoryGraph)}
}

// AddNode inserts or replaces a node in graph.
func (s *MemoryStore) AddNode(graph string, node *types.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph(graph).nodes[node.ID] = node
}

// AddEdge appends an edge to graph.
func (s *MemoryStore) AddEdge(graph string, edge types.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.graph(graph)
	g.edges = append(g.edges, edge)
}

// graph returns the named graph, creating it if absent. Callers hold the
// write lock.
func (s *MemoryStore) graph(name string) *memoryGraph {
	g, ok := s.graphs[name]
	if !ok {
		g = &memoryGraph{nodes: make(map[string]*types.Node)}
		s.graphs[name] = g
	}
	return g
}

func (s *MemoryStore) MatchNodes(ctx context.Context, graph, text string, opts *MatchOptions) ([]*types.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewConnectivityError("graph store", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[graph]
	if !ok {
		return []*types.Node{}, nil
	}

	limit := DefaultMatchLimit
	var allowed map[types.NodeType]bool
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		if len(opts.Types) > 0 {
			allowed = make(map[types.NodeType]bool, len(opts.Types))
			for _, t := range opts.Types {
				allowed[t] = true
			}
		}
	}

	needle := strings.ToLower(text)
	matches := make([]*types.Node, 0)
	for _, node := range g.nodes {
		if allowed != nil && !allowed[node.Type] {
			continue
		}
		if strings.Contains(strings.ToLower(node.Label), needle) ||
			strings.Contains(strings.ToLower(node.Content), needle) {
			matches = append(matches, node)
		}
	}
	// Map iteration order is random; the returned subset must be stable
	// across identical queries, so order before truncating.
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) GetNodes(ctx context.Context, graph string, ids []string) ([]*types.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewConnectivityError("graph store", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[graph]
	if !ok {
		return []*types.Node{}, nil
	}

	nodes := make([]*types.Node, 0, len(ids))
	for _, id := range ids {
		if node, ok := g.nodes[id]; ok {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func (s *MemoryStore) Edges(ctx context.Context, graph string) ([]types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewConnectivityError("graph store", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[graph]
	if !ok {
		return []types.Edge{}, nil
	}
	out := make([]types.Edge, len(g.edges))
	copy(out, g.edges)
	return out, nil
}

func (s *MemoryStore) NodeEdges(ctx context.Context, graph, id string) ([]types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewConnectivityError("graph store", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[graph]
	if !ok {
		return []types.Edge{}, nil
	}
	var out []types.Edge
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
