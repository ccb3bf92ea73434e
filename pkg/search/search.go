// Package search is the query-time core of the engine: it classifies input,
// dispatches the retrieval methods a mode calls for, and fuses their
// heterogeneous result lists into one ranked, deduplicated, threshold-
// filtered answer set with provenance.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ragno-ai/ragno/pkg/embedder"
	"github.com/ragno-ai/ragno/pkg/extractor"
	"github.com/ragno-ai/ragno/pkg/pagerank"
	"github.com/ragno-ai/ragno/pkg/store"
	"github.com/ragno-ai/ragno/pkg/types"
	"github.com/ragno-ai/ragno/pkg/vectorindex"
)

// Defaults applied once when options are normalized.
const (
	DefaultLimit         = 10
	DefaultThreshold     = 0.7
	DefaultMethodTimeout = 10 * time.Second

	// seedMatchLimit bounds per-entity seed resolution for free-text
	// traversal queries.
	seedMatchLimit = 3
)

// Options control a single search. Zero values mean "use the default".
type Options struct {
	Mode      Mode
	Limit     int
	Threshold *float64
	// TypeFilters restricts results to the given node types. Nil means
	// the configured allowed set; an explicit empty slice means no
	// restriction.
	TypeFilters       []types.NodeType
	IncludeContext    *bool
	IncludeProvenance *bool
	// Graph names the graph scope to query; empty uses the configured
	// default.
	Graph string
}

// Config holds construction-time settings for a Searcher.
type Config struct {
	// DefaultGraph is the graph scope used when a query names none.
	DefaultGraph string

	// AllowedTypes is the configured node-type universe. Empty means all
	// known types.
	AllowedTypes []types.NodeType

	// MethodTimeout bounds each dispatched retrieval method independently.
	MethodTimeout time.Duration

	// Alpha and MaxIterations parameterize traversal.
	Alpha         float64
	MaxIterations int

	// Metric is the vector index's similarity metric, needed to rescale
	// similarity scores into [0,1] before fusion.
	Metric vectorindex.Metric
}

// Searcher coordinates the retrieval methods. All per-query state is local
// to Search; a Searcher is safe for concurrent use.
type Searcher struct {
	store     store.GraphStore
	index     *vectorindex.Index
	embedder  embedder.Client
	extractor extractor.Client
	traversal *pagerank.Engine
	exact     *ExactMatcher
	cfg       Config
	logger    *slog.Logger
}

// NewSearcher wires the retrieval methods together. The extractor may be
// nil; traversal over free text then falls back to the raw query pseudo-seed.
func NewSearcher(st store.GraphStore, index *vectorindex.Index, embed embedder.Client, extract extractor.Client, cfg Config, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MethodTimeout <= 0 {
		cfg.MethodTimeout = DefaultMethodTimeout
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = types.AllNodeTypes()
	}
	if cfg.Metric == "" {
		cfg.Metric = vectorindex.Cosine
	}

	return &Searcher{
		store:     st,
		index:     index,
		embedder:  embed,
		extractor: extract,
		traversal: pagerank.NewEngine(st, logger),
		exact:     NewExactMatcher(st),
		cfg:       cfg,
		logger:    logger,
	}
}

// methodOutcome is the uniform result-or-error value each dispatched method
// returns, so the fusion step can inspect outcomes without a panic path.
type methodOutcome struct {
	method     types.SearchMethod
	candidates []*types.Candidate
	err        error
}

// Search runs query under opts and returns a fused result set. Individual
// method failures are absorbed here: they are logged, counted, and the
// query proceeds with whatever completed. Only when every dispatched method
// fails does the result carry the Degraded flag; it is still not an error.
func (s *Searcher) Search(ctx context.Context, query string, opts *Options) (*types.ResultSet, error) {
	start := time.Now()
	normalized := s.normalizeOptions(opts)

	result := &types.ResultSet{
		QueryID:    uuid.NewString(),
		Query:      query,
		Mode:       normalized.Mode.String(),
		Candidates: []*types.Candidate{},
		Counts:     types.MethodCounts{},
	}

	query = strings.TrimSpace(query)
	if query == "" {
		result.Elapsed = time.Since(start)
		return result, nil
	}

	var outcomes []methodOutcome
	switch normalized.Mode {
	case ModeExact:
		outcomes = []methodOutcome{s.runExact(ctx, query, normalized)}
	case ModeSimilarity:
		outcomes = []methodOutcome{s.runSimilarity(ctx, query, normalized)}
	case ModeTraversal:
		outcomes = []methodOutcome{s.runTraversalFromInput(ctx, query, normalized)}
	case ModeDual:
		outcomes = s.runDual(ctx, query, normalized)
	}

	failures := 0
	var lists [][]*types.Candidate
	for _, o := range outcomes {
		if o.err != nil {
			failures++
			s.logger.Warn("retrieval method failed",
				"query_id", result.QueryID, "method", o.method, "error", o.err)
			continue
		}
		result.Counts[o.method] = len(o.candidates)
		normalizeScores(o.method, o.candidates, s.cfg.Metric)
		lists = append(lists, o.candidates)
	}

	if len(outcomes) > 0 && failures == len(outcomes) {
		// Absence of evidence is a valid outcome; unavailable
		// infrastructure is flagged, not thrown.
		result.Degraded = true
		result.Elapsed = time.Since(start)
		return result, nil
	}

	candidates := mergeCandidates(lists)
	candidates = filterByType(candidates, normalized.TypeFilters)
	candidates = filterByThreshold(candidates, *normalized.Threshold)
	sortCandidates(candidates)
	if len(candidates) > normalized.Limit {
		candidates = candidates[:normalized.Limit]
	}

	if *normalized.IncludeContext {
		enrichContext(ctx, s.store, normalized.Graph, candidates, s.logger)
	}
	if !*normalized.IncludeProvenance {
		for _, c := range candidates {
			c.Methods = nil
		}
	}

	result.Candidates = candidates
	result.Elapsed = time.Since(start)
	return result, nil
}

// normalizeOptions applies documented defaults exactly once, so downstream
// code never re-checks for zero values.
func (s *Searcher) normalizeOptions(opts *Options) Options {
	out := Options{}
	if opts != nil {
		out = *opts
	}
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Threshold == nil {
		threshold := DefaultThreshold
		out.Threshold = &threshold
	}
	if out.TypeFilters == nil {
		out.TypeFilters = s.cfg.AllowedTypes
	}
	if out.IncludeContext == nil {
		includeContext := true
		out.IncludeContext = &includeContext
	}
	if out.IncludeProvenance == nil {
		includeProvenance := true
		out.IncludeProvenance = &includeProvenance
	}
	if out.Graph == "" {
		out.Graph = s.cfg.DefaultGraph
	}
	return out
}

// runDual is the two-stage parallel plan: exact and similarity gather seeds
// concurrently, a barrier joins them, then traversal runs alone on the seed
// union before fusion sees all three lists.
func (s *Searcher) runDual(ctx context.Context, query string, opts Options) []methodOutcome {
	stage1 := make([]methodOutcome, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stage1[0] = s.runExact(ctx, query, opts)
	}()
	go func() {
		defer wg.Done()
		stage1[1] = s.runSimilarity(ctx, query, opts)
	}()
	wg.Wait()

	outcomes := stage1
	seeds := seedUnion(stage1)
	if len(seeds) > 0 {
		outcomes = append(outcomes, s.runTraversal(ctx, seeds, opts))
	}
	return outcomes
}

// seedUnion collects the distinct identifiers surfaced by successful
// stage-one methods, preserving discovery order.
func seedUnion(outcomes []methodOutcome) []string {
	seen := make(map[string]bool)
	var seeds []string
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		for _, c := range o.candidates {
			if !seen[c.ID] {
				seen[c.ID] = true
				seeds = append(seeds, c.ID)
			}
		}
	}
	return seeds
}

func (s *Searcher) runExact(ctx context.Context, query string, opts Options) methodOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.MethodTimeout)
	defer cancel()

	candidates, err := s.exact.Match(ctx, opts.Graph, query, opts.TypeFilters, opts.Limit*2)
	return methodOutcome{method: types.ExactMethod, candidates: candidates, err: err}
}

func (s *Searcher) runSimilarity(ctx context.Context, query string, opts Options) methodOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.MethodTimeout)
	defer cancel()

	outcome := methodOutcome{method: types.SimilarityMethod}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		outcome.err = err
		return outcome
	}
	if len(vectors) == 0 {
		outcome.candidates = []*types.Candidate{}
		return outcome
	}

	hits, err := s.index.Search(vectors[0], opts.Limit*2)
	if err != nil {
		outcome.err = err
		return outcome
	}

	candidates := make([]*types.Candidate, 0, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, &types.Candidate{
			ID:      h.ID,
			Score:   h.Score,
			Methods: []types.SearchMethod{types.SimilarityMethod},
		})
		ids = append(ids, h.ID)
	}
	s.resolveCandidates(ctx, opts.Graph, ids, candidates)

	outcome.candidates = candidates
	return outcome
}

// resolveCandidates fills type and text metadata from the store, best
// effort. Unresolvable candidates keep their id and score.
func (s *Searcher) resolveCandidates(ctx context.Context, graph string, ids []string, candidates []*types.Candidate) {
	if len(ids) == 0 {
		return
	}
	nodes, err := s.store.GetNodes(ctx, graph, ids)
	if err != nil {
		s.logger.Warn("candidate resolution failed", "error", err)
		return
	}
	byID := make(map[string]*types.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, c := range candidates {
		if n, ok := byID[c.ID]; ok {
			c.Type = n.Type
			c.Label = n.Label
			c.Content = n.Content
		}
	}
}

// runTraversalFromInput handles traversal mode: identifier input seeds the
// walk directly, free text goes through entity extraction first. Extraction
// failure falls back to the raw query as a single pseudo-seed, which at
// worst contributes no mass.
func (s *Searcher) runTraversalFromInput(ctx context.Context, input string, opts Options) methodOutcome {
	if Classify(input) == Identifier {
		return s.runTraversal(ctx, []string{strings.TrimSpace(input)}, opts)
	}
	return s.runTraversal(ctx, s.seedsFromText(ctx, input, opts), opts)
}

// seedsFromText maps free text to seed identifiers: extracted entities that
// are themselves identifiers pass through, the rest are resolved against the
// store by exact match.
func (s *Searcher) seedsFromText(ctx context.Context, text string, opts Options) []string {
	if s.extractor == nil {
		return []string{text}
	}

	entities, err := s.extractor.Extract(ctx, text)
	if err != nil {
		s.logger.Warn("entity extraction failed, using raw query as pseudo-seed", "error", err)
		return []string{text}
	}

	seen := make(map[string]bool)
	var seeds []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			seeds = append(seeds, id)
		}
	}

	for _, entity := range entities {
		if IsIdentifier(entity) {
			add(entity)
			continue
		}
		matches, err := s.exact.Match(ctx, opts.Graph, entity, opts.TypeFilters, seedMatchLimit)
		if err != nil {
			s.logger.Warn("seed resolution failed", "entity", entity, "error", err)
			continue
		}
		for _, m := range matches {
			add(m.ID)
		}
	}
	return seeds
}

func (s *Searcher) runTraversal(ctx context.Context, seeds []string, opts Options) methodOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.MethodTimeout)
	defer cancel()

	candidates, err := s.traversal.Traverse(ctx, opts.Graph, seeds, s.cfg.Alpha, s.cfg.MaxIterations)
	return methodOutcome{method: types.TraversalMethod, candidates: candidates, err: err}
}
