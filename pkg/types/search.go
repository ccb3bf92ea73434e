package types

import "time"

// SearchMethod names one of the retrieval paradigms the engine can combine.
type SearchMethod string

const (
	ExactMethod      SearchMethod = "exact"
	SimilarityMethod SearchMethod = "similarity"
	TraversalMethod  SearchMethod = "traversal"
)

// Candidate is a single node surfaced by one or more retrieval methods.
// Score semantics depend on where the candidate is in the pipeline: before
// fusion it is the method's raw score (exact match quality, vector
// similarity, or PageRank probability); after fusion it is the normalized
// [0,1] fused score.
type Candidate struct {
	ID      string   `json:"id"`
	Type    NodeType `json:"type"`
	Score   float64  `json:"score"`
	Label   string   `json:"label,omitempty"`
	Content string   `json:"content,omitempty"`

	// Methods records which retrieval methods independently discovered this
	// candidate. After fusion it is the union across all contributing lists.
	Methods []SearchMethod `json:"methods,omitempty"`

	// Context holds one hop of relationship context when enrichment is
	// requested. Best effort; nil when enrichment was off or failed.
	Context []Edge `json:"context,omitempty"`
}

// HasMethod reports whether method contributed to this candidate.
func (c *Candidate) HasMethod(method SearchMethod) bool {
	for _, m := range c.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// MethodCounts tallies how many raw candidates each method produced for a
// query, before fusion. A method that failed or was not dispatched is absent.
type MethodCounts map[SearchMethod]int

// ResultSet is the final answer to a search: fused candidates in descending
// score order (ties broken by ID ascending) plus query metadata.
type ResultSet struct {
	QueryID    string        `json:"query_id"`
	Query      string        `json:"query"`
	Mode       string        `json:"mode"`
	Candidates []*Candidate  `json:"candidates"`
	Counts     MethodCounts  `json:"counts,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`

	// Degraded is set only when every dispatched retrieval method failed.
	// It lets callers distinguish "nothing relevant" from "retrieval
	// infrastructure unavailable". An empty non-degraded set is a normal
	// outcome, not an error.
	Degraded bool `json:"degraded"`
}
