package types

// NodeType identifies the ontology class of a graph node. The set of types
// a deployment allows is configured once at construction time; the engine
// never invents new types at query time.
type NodeType string

const (
	EntityNodeType       NodeType = "entity"
	UnitNodeType         NodeType = "unit"
	AttributeNodeType    NodeType = "attribute"
	TextElementNodeType  NodeType = "text_element"
	CommunityNodeType    NodeType = "community"
	RelationshipNodeType NodeType = "relationship"
)

// AllNodeTypes returns every node type the engine knows about, in a stable
// order. Used as the default type filter when a query does not restrict types.
func AllNodeTypes() []NodeType {
	return []NodeType{
		EntityNodeType,
		UnitNodeType,
		AttributeNodeType,
		TextElementNodeType,
		CommunityNodeType,
		RelationshipNodeType,
	}
}

// IsValidNodeType reports whether t is one of the known ontology classes.
func IsValidNodeType(t NodeType) bool {
	switch t {
	case EntityNodeType, UnitNodeType, AttributeNodeType,
		TextElementNodeType, CommunityNodeType, RelationshipNodeType:
		return true
	}
	return false
}

// Node is a read-only view of a graph node as the retrieval engine sees it.
// Nodes are created by the ingestion pipeline; this engine never writes them.
type Node struct {
	// ID is the node's URI. It is opaque to the engine apart from being
	// usable as a traversal seed and a deduplication key.
	ID string `json:"id"`

	Type NodeType `json:"type"`

	// Label is the short human-readable name, Content the longer text body.
	// Either may be empty depending on node type.
	Label   string `json:"label,omitempty"`
	Content string `json:"content,omitempty"`

	// Embedding is the node's vector, when the store materializes one.
	Embedding []float32 `json:"embedding,omitempty"`
}

// Edge is a directed, labeled connection between two nodes. The retrieval
// engine only reads edges for traversal adjacency and context enrichment.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}
