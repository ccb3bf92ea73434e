package search

import (
	"context"
	"strings"

	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/types"
)

// ExactMatcher finds nodes whose label or content textually matches a query
// string, scored by match quality.
type ExactMatcher struct {
	store store.GraphStore
}

// NewExactMatcher creates an exact-match engine over st.
func NewExactMatcher(st store.GraphStore) *ExactMatcher {
	return &ExactMatcher{store: st}
}

// Match normalizes queryText (case-fold, trim) and returns scored candidates
// of the allowed types. Exact equality with a node's label scores 1.0;
// partial matches score the longest-common-substring ratio in (0,1). Zero
// matches is an empty list, not an error; store unavailability surfaces as a
// ConnectivityError for the orchestrator to absorb.
func (m *ExactMatcher) Match(ctx context.Context, graph, queryText string, allowed []types.NodeType, limit int) ([]*types.Candidate, error) {
	needle := strings.ToLower(strings.TrimSpace(queryText))
	if needle == "" {
		return []*types.Candidate{}, nil
	}

	nodes, err := m.store.MatchNodes(ctx, graph, needle, &store.MatchOptions{
		Types: allowed,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]*types.Candidate, 0, len(nodes))
	for _, node := range nodes {
		score := matchQuality(needle, node)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, &types.Candidate{
			ID:      node.ID,
			Type:    node.Type,
			Score:   score,
			Label:   node.Label,
			Content: node.Content,
			Methods: []types.SearchMethod{types.ExactMethod},
		})
	}
	return candidates, nil
}

// matchQuality scores how well the normalized needle matches a node's label
// or content, whichever is better.
func matchQuality(needle string, node *types.Node) float64 {
	score := textScore(needle, strings.ToLower(node.Label))
	if contentScore := textScore(needle, strings.ToLower(node.Content)); contentScore > score {
		score = contentScore
	}
	return score
}

// textScore is 1.0 on exact equality, otherwise the length of the longest
// common substring divided by the length of the longer string.
func textScore(needle, haystack string) float64 {
	if haystack == "" {
		return 0
	}
	if needle == haystack {
		return 1.0
	}

	lcs := longestCommonSubstring(needle, haystack)
	if lcs == 0 {
		return 0
	}
	longer := len(needle)
	if len(haystack) > longer {
		longer = len(haystack)
	}
	return float64(lcs) / float64(longer)
}

// longestCommonSubstring returns the length of the longest contiguous
// substring shared by a and b, using the rolling single-row DP.
func longestCommonSubstring(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	row := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			curr := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
				if row[j] > best {
					best = row[j]
				}
			} else {
				row[j] = 0
			}
			prev = curr
		}
	}
	return best
}
