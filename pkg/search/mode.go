package search

import "fmt"

// Mode selects which retrieval methods a query dispatches. It is a closed
// set: adding a mode means extending the switch in Searcher.Search, checked
// at compile time, rather than an open string comparison at each use site.
type Mode int

const (
	// ModeDual runs exact and similarity concurrently, feeds the union of
	// their hits into traversal as seeds, and fuses all three. Default.
	ModeDual Mode = iota
	// ModeExact runs textual matching only.
	ModeExact
	// ModeSimilarity embeds the query and searches the vector index only.
	ModeSimilarity
	// ModeTraversal runs personalized PageRank from the input (or from
	// extracted seeds for free-text input) only.
	ModeTraversal
)

func (m Mode) String() string {
	switch m {
	case ModeDual:
		return "dual"
	case ModeExact:
		return "exact"
	case ModeSimilarity:
		return "similarity"
	case ModeTraversal:
		return "traversal"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps the wire names onto modes. Empty input means ModeDual.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "dual":
		return ModeDual, nil
	case "exact":
		return ModeExact, nil
	case "similarity":
		return ModeSimilarity, nil
	case "traversal":
		return ModeTraversal, nil
	default:
		return ModeDual, fmt.Errorf("unknown search mode %q", s)
	}
}
