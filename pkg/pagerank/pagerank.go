// Package pagerank scores graph nodes by personalized PageRank: a random
// walk that restarts at a fixed seed set, so probability mass concentrates
// on nodes structurally close to the seeds.
package pagerank

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/types"
)

const (
	// DefaultAlpha is the restart probability of the walk.
	DefaultAlpha = 0.15

	// DefaultMaxIterations bounds the fixed-point iteration so traversal
	// always terminates even when it does not converge.
	DefaultMaxIterations = 50

	// convergenceTolerance is the L1 change between iterations below which
	// the distribution is considered stationary.
	convergenceTolerance = 1e-6

	// minRank drops nodes with negligible probability to bound output size.
	minRank = 1e-8
)

// Engine runs personalized PageRank over a named graph's edge structure.
// The adjacency is fetched from the store per traversal; iteration itself
// is CPU-bound and does not suspend.
type Engine struct {
	store  store.GraphStore
	logger *slog.Logger
}

// NewEngine creates a traversal engine over st.
func NewEngine(st store.GraphStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, logger: logger}
}

// Traverse runs personalized PageRank from seeds and returns all nodes with
// non-negligible stationary probability as traversal candidates, descending
// by rank. An empty seed set, or a seed set with no member present in the
// graph, yields an empty list and no error.
func (e *Engine) Traverse(ctx context.Context, graph string, seeds []string, alpha float64, maxIterations int) ([]*types.Candidate, error) {
	if len(seeds) == 0 {
		return []*types.Candidate{}, nil
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	edges, err := e.store.Edges(ctx, graph)
	if err != nil {
		return nil, err
	}

	adjacency, nodeSet := buildAdjacency(edges)

	// Seeds absent from the graph contribute no mass.
	present := make([]string, 0, len(seeds))
	seen := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		if nodeSet[s] && !seen[s] {
			present = append(present, s)
			seen[s] = true
		}
	}
	if len(present) == 0 {
		e.logger.Debug("no traversal seeds present in graph", "graph", graph, "seeds", len(seeds))
		return []*types.Candidate{}, nil
	}

	ranks := e.iterate(adjacency, nodeSet, present, alpha, maxIterations)

	ids := make([]string, 0, len(ranks))
	for id, rank := range ranks {
		if rank >= minRank {
			ids = append(ids, id)
		}
	}
	// Deterministic order before resolving nodes: rank desc, id asc.
	sort.Slice(ids, func(i, j int) bool {
		if ranks[ids[i]] != ranks[ids[j]] {
			return ranks[ids[i]] > ranks[ids[j]]
		}
		return ids[i] < ids[j]
	})

	return e.resolve(ctx, graph, ids, ranks), nil
}

// iterate runs the power iteration:
//
//	r' = alpha*t + (1-alpha) * (Wᵀ r + danglingMass * t)
//
// where t is uniform over the seeds and W spreads each node's mass uniformly
// over its outgoing edges. Mass at dangling nodes flows back to the teleport
// vector so total probability is conserved.
func (e *Engine) iterate(adjacency map[string][]string, nodeSet map[string]bool, seeds []string, alpha float64, maxIterations int) map[string]float64 {
	teleport := 1.0 / float64(len(seeds))
	isSeed := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		isSeed[s] = true
	}

	ranks := make(map[string]float64, len(nodeSet))
	for _, s := range seeds {
		ranks[s] = teleport
	}

	for iter := 0; iter < maxIterations; iter++ {
		next := make(map[string]float64, len(ranks))

		var danglingMass float64
		for id, rank := range ranks {
			if rank == 0 {
				continue
			}
			out := adjacency[id]
			if len(out) == 0 {
				danglingMass += rank
				continue
			}
			share := rank / float64(len(out))
			for _, target := range out {
				next[target] += share
			}
		}

		delta := 0.0
		for _, s := range seeds {
			next[s] += danglingMass * teleport
		}
		for id := range next {
			v := (1 - alpha) * next[id]
			if isSeed[id] {
				v += alpha * teleport
			}
			next[id] = v
			delta += math.Abs(v - ranks[id])
		}
		// Nodes that lost all their mass this iteration still count
		// toward the L1 change.
		for id, old := range ranks {
			if _, ok := next[id]; !ok {
				delta += old
			}
		}

		ranks = next
		if delta < convergenceTolerance {
			break
		}
	}
	return ranks
}

// resolve attaches node type and content from the store. Resolution is best
// effort: if the lookup fails the candidates keep their ids and ranks so the
// traversal evidence is not lost.
func (e *Engine) resolve(ctx context.Context, graph string, ids []string, ranks map[string]float64) []*types.Candidate {
	byID := make(map[string]*types.Node)
	nodes, err := e.store.GetNodes(ctx, graph, ids)
	if err != nil {
		e.logger.Warn("traversal node resolution failed", "graph", graph, "error", err)
	} else {
		for _, n := range nodes {
			byID[n.ID] = n
		}
	}

	candidates := make([]*types.Candidate, 0, len(ids))
	for _, id := range ids {
		c := &types.Candidate{
			ID:      id,
			Score:   ranks[id],
			Methods: []types.SearchMethod{types.TraversalMethod},
		}
		if n, ok := byID[id]; ok {
			c.Type = n.Type
			c.Label = n.Label
			c.Content = n.Content
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// buildAdjacency folds the edge list into an outgoing-neighbor map and the
// set of all endpoint ids.
func buildAdjacency(edges []types.Edge) (map[string][]string, map[string]bool) {
	adjacency := make(map[string][]string)
	nodeSet := make(map[string]bool)
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		nodeSet[e.Source] = true
		nodeSet[e.Target] = true
	}
	return adjacency, nodeSet
}
