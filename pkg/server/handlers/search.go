package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ragno-ai/ragno"
	"github.com/ragno-ai/ragno/pkg/search"
	"github.com/ragno-ai/ragno/pkg/server/dto"
	"github.com/ragno-ai/ragno/pkg/types"
)

// SearchHandler handles retrieval requests
type SearchHandler struct {
	ragno ragno.Ragno
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(r ragno.Ragno) *SearchHandler {
	return &SearchHandler{ragno: r}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	req, opts, ok := h.bindSearch(c)
	if !ok {
		return
	}

	results, err := h.ragno.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		writeSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// Context handles POST /api/v1/context: same retrieval, rendered as an LLM
// grounding block instead of structured candidates.
func (h *SearchHandler) Context(c *gin.Context) {
	req, opts, ok := h.bindSearch(c)
	if !ok {
		return
	}

	results, err := h.ragno.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		writeSearchError(c, err)
		return
	}

	block, err := search.ResultSetToContextString(results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "render_failed", Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ContextResponse{QueryID: results.QueryID, Context: block})
}

// bindSearch decodes and validates the shared search request body.
func (h *SearchHandler) bindSearch(c *gin.Context) (*dto.SearchRequest, *search.Options, bool) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error(),
		})
		return nil, nil, false
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: "query field is required and cannot be empty",
		})
		return nil, nil, false
	}

	mode, err := search.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error(),
		})
		return nil, nil, false
	}

	var typeFilters []types.NodeType
	for _, name := range req.Types {
		t := types.NodeType(name)
		if !types.IsValidNodeType(t) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "invalid_request", Message: "unknown node type " + name,
			})
			return nil, nil, false
		}
		typeFilters = append(typeFilters, t)
	}

	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: "threshold must be within [0,1]",
		})
		return nil, nil, false
	}

	opts := &search.Options{
		Mode:              mode,
		Limit:             req.Limit,
		Threshold:         req.Threshold,
		TypeFilters:       typeFilters,
		IncludeContext:    req.IncludeContext,
		IncludeProvenance: req.IncludeProvenance,
		Graph:             req.Graph,
	}
	return &req, opts, true
}

func writeSearchError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "search_failed"
	if errors.Is(err, &types.ConnectivityError{}) {
		status = http.StatusBadGateway
		code = "backend_unreachable"
	}
	c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
}
