// Package vectorindex provides an in-process approximate-nearest-neighbor
// index over fixed-dimension embedding vectors, based on the
// Hierarchical Navigable Small World (HNSW) graph structure.
//
// The index is read-mostly during query serving: searches take a shared
// lock, inserts and removals take an exclusive lock, so a reader never
// observes a partially-linked vector.
package vectorindex

import (
	"container/heap"
	"math"
	"math/rand"
	"sync"

	"github.com/ragno-ai/ragno/pkg/types"
)

// Metric selects how similarity between vectors is computed.
type Metric string

const (
	// Cosine similarity in [-1, 1]. Vectors are compared by angle only.
	Cosine Metric = "cosine"
	// DotProduct is the unnormalized inner product.
	DotProduct Metric = "dot_product"
)

// Default construction parameters. M and EfConstruction trade index build
// cost for recall; EfSearch trades query latency for recall.
const (
	DefaultM              = 16
	DefaultEfConstruction = 200
	DefaultEfSearch       = 64
)

// Config holds construction parameters for an Index.
type Config struct {
	// Dimension is the fixed vector length. Every inserted vector must
	// have exactly this length.
	Dimension int

	// M is the maximum number of neighbors kept per node on the upper
	// layers; layer zero keeps 2*M.
	M int

	// EfConstruction is the candidate breadth while linking a new vector.
	EfConstruction int

	// EfSearch is the candidate breadth at query time. Raised to k when
	// a query asks for more results than the configured breadth.
	EfSearch int

	Metric Metric
}

// Result is one search hit: the vector's node ID and its similarity to the
// query under the index metric, higher is better.
type Result struct {
	ID    string
	Score float64
}

type indexNode struct {
	id     string
	vector []float32
	norm   float64

	// connections[l] holds neighbor slots at layer l; slot 0 is the base
	// layer. Neighbors reference slots, not IDs, so replaced vectors stay
	// traversable until compaction.
	connections [][]uint32
	deleted     bool
}

// Index is a thread-safe HNSW index. The zero value is not usable; call New.
type Index struct {
	mu  sync.RWMutex
	cfg Config

	nodes []*indexNode
	byID  map[string]uint32

	entry     int64 // slot of the entry point, -1 when empty
	maxLayer  int
	levelMult float64
	rng       *rand.Rand
	live      int
}

// New constructs an empty index. Misconfiguration (non-positive dimension)
// is a caller error reported synchronously; defaults are applied for
// unset tuning parameters.
func New(cfg Config) (*Index, error) {
	if cfg.Dimension <= 0 {
		return nil, &types.ConfigurationError{Field: "dimension", Err: types.ErrInvalidDimension}
	}
	if cfg.M <= 0 {
		cfg.M = DefaultM
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = DefaultEfConstruction
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = DefaultEfSearch
	}
	if cfg.Metric == "" {
		cfg.Metric = Cosine
	}

	return &Index{
		cfg:       cfg,
		byID:      make(map[string]uint32),
		entry:     -1,
		levelMult: 1.0 / math.Log(float64(cfg.M)),
		rng:       rand.New(rand.NewSource(1)),
	}, nil
}

// Len returns the number of live vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.live
}

// Dimension returns the configured vector dimension.
func (ix *Index) Dimension() int { return ix.cfg.Dimension }

// Insert adds or replaces the vector for id. Vectors whose length differs
// from the configured dimension are rejected with DimensionMismatchError;
// the caller is expected to reconcile dimensions before insertion.
func (ix *Index) Insert(id string, vector []float32) error {
	if len(vector) != ix.cfg.Dimension {
		return &types.DimensionMismatchError{Want: ix.cfg.Dimension, Got: len(vector)}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if slot, ok := ix.byID[id]; ok {
		// Replace: soft-delete the old slot and re-insert so the new
		// vector gets linked by its own geometry.
		ix.nodes[slot].deleted = true
		ix.live--
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)

	level := ix.randomLevel()
	n := &indexNode{
		id:          id,
		vector:      vec,
		norm:        vectorNorm(vec),
		connections: make([][]uint32, level+1),
	}

	slot := uint32(len(ix.nodes))
	ix.nodes = append(ix.nodes, n)
	ix.byID[id] = slot
	ix.live++

	if ix.entry < 0 {
		ix.entry = int64(slot)
		ix.maxLayer = level
		return nil
	}

	curr := uint32(ix.entry)

	// Greedy descent through layers above the new node's top level.
	for l := ix.maxLayer; l > level; l-- {
		curr = ix.greedyClosest(vec, n.norm, curr, l)
	}

	// Link into every layer from min(level, maxLayer) down to the base.
	top := level
	if top > ix.maxLayer {
		top = ix.maxLayer
	}
	for l := top; l >= 0; l-- {
		candidates := ix.searchLayer(vec, n.norm, curr, ix.cfg.EfConstruction, l)
		neighbors := ix.selectNeighbors(candidates, ix.cfg.M)

		n.connections[l] = append(n.connections[l], neighbors...)
		maxConn := ix.maxConnections(l)
		for _, nb := range neighbors {
			other := ix.nodes[nb]
			other.connections[l] = append(other.connections[l], slot)
			if len(other.connections[l]) > maxConn {
				other.connections[l] = ix.pruneConnections(other, l, maxConn)
			}
		}

		if len(candidates) > 0 {
			curr = candidates[0].slot
		}
	}

	if level > ix.maxLayer {
		ix.maxLayer = level
		ix.entry = int64(slot)
	}
	return nil
}

// Remove deletes the vector for id. Subsequent searches never return it.
// Removing an absent id is a no-op.
func (ix *Index) Remove(id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	slot, ok := ix.byID[id]
	if !ok {
		return nil
	}
	// Soft delete: the slot stays traversable so graph connectivity is
	// preserved, but it is filtered from every result set.
	ix.nodes[slot].deleted = true
	delete(ix.byID, id)
	ix.live--
	return nil
}

// Search returns up to k hits ordered by descending similarity to query.
// An empty index yields an empty slice, not an error. k must be positive
// and the query vector must match the configured dimension.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, types.ErrInvalidK
	}
	if len(query) != ix.cfg.Dimension {
		return nil, &types.DimensionMismatchError{Want: ix.cfg.Dimension, Got: len(query)}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.entry < 0 || ix.live == 0 {
		return []Result{}, nil
	}

	qnorm := vectorNorm(query)
	curr := uint32(ix.entry)
	for l := ix.maxLayer; l > 0; l-- {
		curr = ix.greedyClosest(query, qnorm, curr, l)
	}

	ef := ix.cfg.EfSearch
	if ef < k {
		ef = k
	}
	candidates := ix.searchLayer(query, qnorm, curr, ef, 0)

	results := make([]Result, 0, k)
	for _, c := range candidates {
		n := ix.nodes[c.slot]
		if n.deleted {
			continue
		}
		results = append(results, Result{ID: n.id, Score: c.score})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// scored pairs a node slot with its similarity to the current query vector.
type scored struct {
	slot  uint32
	score float64
}

// greedyClosest walks layer l from start toward the query until no neighbor
// improves on the current similarity.
func (ix *Index) greedyClosest(query []float32, qnorm float64, start uint32, l int) uint32 {
	curr := start
	currScore := ix.similarity(query, qnorm, curr)
	for {
		improved := false
		n := ix.nodes[curr]
		if l < len(n.connections) {
			for _, nb := range n.connections[l] {
				if s := ix.similarity(query, qnorm, nb); s > currScore {
					curr, currScore = nb, s
					improved = true
				}
			}
		}
		if !improved {
			return curr
		}
	}
}

// searchLayer is the best-first expansion at a single layer with breadth ef.
// Results come back sorted by descending similarity and may include deleted
// slots; callers filter.
func (ix *Index) searchLayer(query []float32, qnorm float64, start uint32, ef, l int) []scored {
	visited := map[uint32]bool{start: true}

	startScore := ix.similarity(query, qnorm, start)
	// frontier pops the most similar candidate first; found evicts the
	// least similar hit once ef is exceeded.
	frontier := &scoredHeap{items: []scored{{start, startScore}}, max: true}
	found := &scoredHeap{items: []scored{{start, startScore}}}
	heap.Init(frontier)
	heap.Init(found)

	for frontier.Len() > 0 {
		c := heap.Pop(frontier).(scored)
		if found.Len() >= ef && c.score < found.items[0].score {
			break
		}
		n := ix.nodes[c.slot]
		if l >= len(n.connections) {
			continue
		}
		for _, nb := range n.connections[l] {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			s := ix.similarity(query, qnorm, nb)
			if found.Len() < ef || s > found.items[0].score {
				heap.Push(frontier, scored{nb, s})
				heap.Push(found, scored{nb, s})
				if found.Len() > ef {
					heap.Pop(found)
				}
			}
		}
	}

	out := make([]scored, found.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(found).(scored)
	}
	return out
}

// selectNeighbors keeps the m most similar candidates. Candidates arrive
// sorted by descending similarity from searchLayer.
func (ix *Index) selectNeighbors(candidates []scored, m int) []uint32 {
	if len(candidates) > m {
		candidates = candidates[:m]
	}
	out := make([]uint32, len(candidates))
	for i, c := range candidates {
		out[i] = c.slot
	}
	return out
}

// pruneConnections trims a node's neighbor list at layer l to the maxConn
// closest neighbors of that node.
func (ix *Index) pruneConnections(n *indexNode, l, maxConn int) []uint32 {
	conns := n.connections[l]
	ranked := make([]scored, 0, len(conns))
	for _, nb := range conns {
		ranked = append(ranked, scored{nb, ix.similarity(n.vector, n.norm, nb)})
	}
	h := &scoredHeap{items: ranked, max: true}
	heap.Init(h)

	kept := make([]uint32, 0, maxConn)
	for len(kept) < maxConn && h.Len() > 0 {
		kept = append(kept, heap.Pop(h).(scored).slot)
	}
	return kept
}

func (ix *Index) maxConnections(l int) int {
	if l == 0 {
		return ix.cfg.M * 2
	}
	return ix.cfg.M
}

// randomLevel draws a layer count from the exponential distribution with
// multiplier 1/ln(M), the standard HNSW level assignment.
func (ix *Index) randomLevel() int {
	return int(math.Floor(-math.Log(ix.rng.Float64()) * ix.levelMult))
}

func (ix *Index) similarity(query []float32, qnorm float64, slot uint32) float64 {
	n := ix.nodes[slot]
	dot := dotProduct(query, n.vector)
	if ix.cfg.Metric == DotProduct {
		return dot
	}
	if qnorm == 0 || n.norm == 0 {
		return 0
	}
	return dot / (qnorm * n.norm)
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// scoredHeap is a heap of scored slots. With max=false it is a min-heap
// (used to evict the worst hit), with max=true a max-heap (used to expand
// the best frontier candidate first).
type scoredHeap struct {
	items []scored
	max   bool
}

func (h *scoredHeap) Len() int { return len(h.items) }

func (h *scoredHeap) Less(i, j int) bool {
	if h.max {
		return h.items[i].score > h.items[j].score
	}
	return h.items[i].score < h.items[j].score
}

func (h *scoredHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *scoredHeap) Push(x any) { h.items = append(h.items, x.(scored)) }

func (h *scoredHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
