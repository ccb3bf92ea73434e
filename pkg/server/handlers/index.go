package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragno-ai/ragno"
	"github.com/ragno-ai/ragno/pkg/server/dto"
	"github.com/ragno-ai/ragno/pkg/types"
)

// IndexHandler handles vector index maintenance requests
type IndexHandler struct {
	ragno ragno.Ragno
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(r ragno.Ragno) *IndexHandler {
	return &IndexHandler{ragno: r}
}

// IndexText handles POST /api/v1/index/text
func (h *IndexHandler) IndexText(c *gin.Context) {
	var req dto.IndexTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error(),
		})
		return
	}

	if err := h.ragno.IndexText(c.Request.Context(), req.ID, req.Text); err != nil {
		status := http.StatusInternalServerError
		code := "index_failed"
		if errors.Is(err, &types.ConnectivityError{}) {
			status = http.StatusBadGateway
			code = "backend_unreachable"
		}
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "indexed", "id": req.ID})
}

// UpsertEmbedding handles PUT /api/v1/index/embedding
func (h *IndexHandler) UpsertEmbedding(c *gin.Context) {
	var req dto.UpsertEmbeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: err.Error(),
		})
		return
	}

	if err := h.ragno.UpsertEmbedding(req.ID, req.Vector); err != nil {
		status := http.StatusInternalServerError
		code := "index_failed"
		if errors.Is(err, &types.DimensionMismatchError{}) {
			status = http.StatusBadRequest
			code = "dimension_mismatch"
		}
		c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "indexed", "id": req.ID})
}

// RemoveEmbedding handles DELETE /api/v1/index?id=...
// The id rides in a query parameter because node URIs contain slashes.
func (h *IndexHandler) RemoveEmbedding(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "invalid_request", Message: "id query parameter is required",
		})
		return
	}

	if err := h.ragno.RemoveEmbedding(id); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "remove_failed", Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed", "id": id})
}
