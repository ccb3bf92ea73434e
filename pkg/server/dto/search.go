// Package dto holds the wire types for the HTTP API.
package dto

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`

	// Mode is one of dual, exact, similarity, traversal. Empty means dual.
	Mode string `json:"mode,omitempty"`

	Limit     int      `json:"limit,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`

	// Types restricts results to the given node types. Absent means the
	// server's configured allowed set.
	Types []string `json:"types,omitempty"`

	IncludeContext    *bool `json:"include_context,omitempty"`
	IncludeProvenance *bool `json:"include_provenance,omitempty"`

	Graph string `json:"graph,omitempty"`
}

// IndexTextRequest is the body of POST /api/v1/index/text.
type IndexTextRequest struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// UpsertEmbeddingRequest is the body of PUT /api/v1/index/embedding.
type UpsertEmbeddingRequest struct {
	ID     string    `json:"id" binding:"required"`
	Vector []float32 `json:"vector" binding:"required"`
}

// ContextResponse is the body returned by POST /api/v1/context.
type ContextResponse struct {
	QueryID string `json:"query_id"`
	Context string `json:"context"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
