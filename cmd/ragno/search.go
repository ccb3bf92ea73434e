package ragno

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragno-ai/ragno"
	"github.com/ragno-ai/ragno/pkg/config"
	"github.com/ragno-ai/ragno/pkg/search"
	"github.com/ragno-ai/ragno/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a retrieval query against the knowledge graph",
	Long: `Run a retrieval query and print the fused, ranked candidates.

The query is either free text or a node identifier (URI). Identifiers seed
graph traversal directly; free text goes through exact matching and vector
similarity first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var (
	searchMode      string
	searchLimit     int
	searchThreshold float64
	searchGraph     string
	searchTypes     []string
	searchAsJSON    bool
	searchAsContext bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchMode, "mode", "dual", "Search mode (dual, exact, similarity, traversal)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0.7, "Minimum fused score in [0,1]")
	searchCmd.Flags().StringVar(&searchGraph, "graph", "", "Graph scope to query")
	searchCmd.Flags().StringSliceVar(&searchTypes, "type", nil, "Restrict results to node types (repeatable)")
	searchCmd.Flags().BoolVar(&searchAsJSON, "json", false, "Print the full result set as JSON")
	searchCmd.Flags().BoolVar(&searchAsContext, "context-block", false, "Print an LLM grounding block instead of candidates")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := buildLogger(cfg)

	client, err := ragno.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Ragno: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	defer client.Close(context.Background())

	mode, err := search.ParseMode(searchMode)
	if err != nil {
		return err
	}

	var typeFilters []types.NodeType
	for _, name := range searchTypes {
		t := types.NodeType(name)
		if !types.IsValidNodeType(t) {
			return fmt.Errorf("unknown node type %q", name)
		}
		typeFilters = append(typeFilters, t)
	}

	opts := &search.Options{
		Mode:        mode,
		Limit:       searchLimit,
		Threshold:   &searchThreshold,
		TypeFilters: typeFilters,
		Graph:       searchGraph,
	}

	if searchAsContext {
		block, err := client.SearchContext(ctx, args[0], opts)
		if err != nil {
			return err
		}
		fmt.Println(block)
		return nil
	}

	results, err := client.Search(ctx, args[0], opts)
	if err != nil {
		return err
	}

	if searchAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printResults(results)
	return nil
}

func printResults(results *types.ResultSet) {
	if results.Degraded {
		fmt.Println("warning: all retrieval methods failed, result set is degraded")
	}
	if len(results.Candidates) == 0 {
		fmt.Println("no results")
		return
	}

	for i, c := range results.Candidates {
		methods := make([]string, 0, len(c.Methods))
		for _, m := range c.Methods {
			methods = append(methods, string(m))
		}
		fmt.Printf("%2d. %.3f  [%s]  %s", i+1, c.Score, c.Type, c.ID)
		if c.Label != "" {
			fmt.Printf("  (%s)", c.Label)
		}
		if len(methods) > 0 {
			fmt.Printf("  via %s", strings.Join(methods, ","))
		}
		fmt.Println()
	}
	fmt.Printf("\n%d results in %s (mode %s)\n", len(results.Candidates), results.Elapsed, results.Mode)
}
