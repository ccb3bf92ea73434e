package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ragno-ai/ragno/pkg/types"
)

// Neo4jStore implements GraphStore against a Neo4j database. Nodes carry
// `id`, `graph`, `type`, `label` and `content` properties; relationships
// carry a `relation` property.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore connects to a Neo4j instance. Connection parameters are
// validated here so misconfiguration fails at construction, not at query
// time.
func NewNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	if uri == "" {
		return nil, &types.ConfigurationError{Field: "store.uri", Err: types.ErrNoStoreEndpoint}
	}

	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, &types.ConfigurationError{Field: "store.uri", Err: err}
	}

	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStore{client: client, database: database}, nil
}

func (s *Neo4jStore) MatchNodes(ctx context.Context, graph, text string, opts *MatchOptions) ([]*types.Node, error) {
	limit := DefaultMatchLimit
	var typeFilter []string
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		for _, t := range opts.Types {
			typeFilter = append(typeFilter, string(t))
		}
	}

	query := `
		MATCH (n {graph: $graph})
		WHERE (toLower(n.label) CONTAINS $text OR toLower(n.content) CONTAINS $text)
	`
	params := map[string]any{
		"graph": graph,
		"text":  text,
		"limit": limit,
	}
	if len(typeFilter) > 0 {
		query += " AND n.type IN $types"
		params["types"] = typeFilter
	}
	query += `
		RETURN n.id AS id, n.type AS type, n.label AS label, n.content AS content
		ORDER BY n.id
		LIMIT $limit
	`

	records, err := s.readRecords(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return recordsToNodes(records), nil
}

func (s *Neo4jStore) GetNodes(ctx context.Context, graph string, ids []string) ([]*types.Node, error) {
	if len(ids) == 0 {
		return []*types.Node{}, nil
	}

	query := `
		MATCH (n {graph: $graph})
		WHERE n.id IN $ids
		RETURN n.id AS id, n.type AS type, n.label AS label, n.content AS content
	`
	records, err := s.readRecords(ctx, query, map[string]any{"graph": graph, "ids": ids})
	if err != nil {
		return nil, err
	}
	return recordsToNodes(records), nil
}

func (s *Neo4jStore) Edges(ctx context.Context, graph string) ([]types.Edge, error) {
	query := `
		MATCH (a {graph: $graph})-[r]->(b {graph: $graph})
		RETURN a.id AS source, b.id AS target, coalesce(r.relation, type(r)) AS relation
	`
	records, err := s.readRecords(ctx, query, map[string]any{"graph": graph})
	if err != nil {
		return nil, err
	}
	return recordsToEdges(records), nil
}

func (s *Neo4jStore) NodeEdges(ctx context.Context, graph, id string) ([]types.Edge, error) {
	query := `
		MATCH (a {graph: $graph})-[r]->(b {graph: $graph})
		WHERE a.id = $id OR b.id = $id
		RETURN a.id AS source, b.id AS target, coalesce(r.relation, type(r)) AS relation
	`
	records, err := s.readRecords(ctx, query, map[string]any{"graph": graph, "id": id})
	if err != nil {
		return nil, err
	}
	return recordsToEdges(records), nil
}

func (s *Neo4jStore) Close() error {
	return s.client.Close(context.Background())
}

// readRecords runs a read transaction and collects the records as maps.
// Driver failures come back as connectivity errors so the orchestrator can
// treat the store as a degraded method.
func (s *Neo4jStore) readRecords(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		var records []map[string]any
		for res.Next(ctx) {
			records = append(records, res.Record().AsMap())
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		return nil, types.NewConnectivityError("graph store", err)
	}

	records, ok := result.([]map[string]any)
	if !ok {
		return nil, types.NewConnectivityError("graph store", fmt.Errorf("unexpected result type %T", result))
	}
	return records, nil
}

func recordsToNodes(records []map[string]any) []*types.Node {
	nodes := make([]*types.Node, 0, len(records))
	for _, record := range records {
		id, _ := record["id"].(string)
		if id == "" {
			continue
		}
		node := &types.Node{ID: id}
		if t, ok := record["type"].(string); ok {
			node.Type = types.NodeType(t)
		}
		if label, ok := record["label"].(string); ok {
			node.Label = label
		}
		if content, ok := record["content"].(string); ok {
			node.Content = content
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func recordsToEdges(records []map[string]any) []types.Edge {
	edges := make([]types.Edge, 0, len(records))
	for _, record := range records {
		source, _ := record["source"].(string)
		target, _ := record["target"].(string)
		if source == "" || target == "" {
			continue
		}
		relation, _ := record["relation"].(string)
		edges = append(edges, types.Edge{Source: source, Target: target, Relation: relation})
	}
	return edges
}
