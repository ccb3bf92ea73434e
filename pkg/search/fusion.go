package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/types"
	"github.com/ragno-ai/ragno/pkg/vectorindex"
)

// maxContextEdges caps one-hop enrichment per candidate.
const maxContextEdges = 16

// canonicalMethodOrder fixes provenance ordering so fused output is
// deterministic regardless of method completion order.
var canonicalMethodOrder = []types.SearchMethod{
	types.ExactMethod,
	types.SimilarityMethod,
	types.TraversalMethod,
}

// normalizeScores rescales a method's raw scores into [0,1] in place, so
// cross-method comparison never mixes incomparable scoring domains:
//
//   - exact scores are already match qualities in [0,1]: identity.
//   - similarity scores are rescaled from the metric's native range: cosine
//     [-1,1] maps linearly onto [0,1]; inner product is min-max scaled
//     within the result list.
//   - traversal probabilities are divided by the run's maximum, so the top
//     traversal hit reads as 1.0.
func normalizeScores(method types.SearchMethod, candidates []*types.Candidate, metric vectorindex.Metric) {
	if len(candidates) == 0 {
		return
	}

	switch method {
	case types.ExactMethod:
		// Already in [0,1].

	case types.SimilarityMethod:
		if metric == vectorindex.DotProduct {
			minMaxScale(candidates)
			return
		}
		for _, c := range candidates {
			c.Score = clamp01((c.Score + 1) / 2)
		}

	case types.TraversalMethod:
		max := candidates[0].Score
		for _, c := range candidates {
			if c.Score > max {
				max = c.Score
			}
		}
		if max <= 0 {
			return
		}
		for _, c := range candidates {
			c.Score = c.Score / max
		}
	}
}

// minMaxScale maps the list's score range onto [0,1]. A single-element or
// constant list reads as 1.0.
func minMaxScale(candidates []*types.Candidate) {
	lo, hi := candidates[0].Score, candidates[0].Score
	for _, c := range candidates {
		if c.Score < lo {
			lo = c.Score
		}
		if c.Score > hi {
			hi = c.Score
		}
	}
	if hi == lo {
		for _, c := range candidates {
			c.Score = 1.0
		}
		return
	}
	for _, c := range candidates {
		c.Score = (c.Score - lo) / (hi - lo)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// mergeCandidates groups normalized per-method lists by identifier, keeping
// the maximum score observed across methods as the fused score and the union
// of contributing methods as provenance. Node metadata is filled from the
// first list that carries it.
func mergeCandidates(lists [][]*types.Candidate) []*types.Candidate {
	merged := make(map[string]*types.Candidate)
	var order []string

	for _, list := range lists {
		for _, c := range list {
			existing, ok := merged[c.ID]
			if !ok {
				fused := &types.Candidate{
					ID:      c.ID,
					Type:    c.Type,
					Score:   c.Score,
					Label:   c.Label,
					Content: c.Content,
					Methods: append([]types.SearchMethod(nil), c.Methods...),
				}
				merged[c.ID] = fused
				order = append(order, c.ID)
				continue
			}
			if c.Score > existing.Score {
				existing.Score = c.Score
			}
			existing.Methods = unionMethods(existing.Methods, c.Methods)
			if existing.Type == "" {
				existing.Type = c.Type
			}
			if existing.Label == "" {
				existing.Label = c.Label
			}
			if existing.Content == "" {
				existing.Content = c.Content
			}
		}
	}

	out := make([]*types.Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}

// unionMethods merges provenance sets in canonical method order.
func unionMethods(a, b []types.SearchMethod) []types.SearchMethod {
	present := make(map[types.SearchMethod]bool, len(a)+len(b))
	for _, m := range a {
		present[m] = true
	}
	for _, m := range b {
		present[m] = true
	}

	out := make([]types.SearchMethod, 0, len(present))
	for _, m := range canonicalMethodOrder {
		if present[m] {
			out = append(out, m)
		}
	}
	return out
}

// filterByType drops candidates whose type is outside allowed. An empty
// filter means no restriction. Candidates with no type survive the filter:
// metadata resolution is best effort, and a store hiccup must not empty an
// otherwise healthy result set.
func filterByType(candidates []*types.Candidate, allowed []types.NodeType) []*types.Candidate {
	if len(allowed) == 0 {
		return candidates
	}
	permitted := make(map[types.NodeType]bool, len(allowed))
	for _, t := range allowed {
		permitted[t] = true
	}

	out := candidates[:0]
	for _, c := range candidates {
		if c.Type == "" || permitted[c.Type] {
			out = append(out, c)
		}
	}
	return out
}

// filterByThreshold drops candidates whose fused score is below threshold.
func filterByThreshold(candidates []*types.Candidate, threshold float64) []*types.Candidate {
	out := candidates[:0]
	for _, c := range candidates {
		if c.Score >= threshold {
			out = append(out, c)
		}
	}
	return out
}

// sortCandidates orders by descending fused score, ties broken by identifier
// ascending so output is fully deterministic.
func sortCandidates(candidates []*types.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})
}

// enrichContext attaches one hop of relationship context to each candidate.
// Enrichment is best effort: a store failure degrades to no context and
// never fails the query.
func enrichContext(ctx context.Context, st store.GraphStore, graph string, candidates []*types.Candidate, logger *slog.Logger) {
	for _, c := range candidates {
		edges, err := st.NodeEdges(ctx, graph, c.ID)
		if err != nil {
			logger.Debug("context enrichment failed", "node", c.ID, "error", err)
			continue
		}
		if len(edges) > maxContextEdges {
			edges = edges[:maxContextEdges]
		}
		c.Context = edges
	}
}
