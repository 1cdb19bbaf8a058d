package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/service"
)

const (
	defaultSearchCount = 5
	defaultBrowseCount = 10
)

// MediaSearcher is the search surface the media handler serves.
type MediaSearcher interface {
	Search(ctx context.Context, req service.SearchRequest) (*service.SearchResult, error)
	Browse(ctx context.Context, req service.SearchRequest) ([]domain.MediaCandidate, error)
}

// MediaHandler handles media search endpoints.
type MediaHandler struct {
	searcher MediaSearcher
}

// NewMediaHandler creates a new media handler.
// Parameters:
//   - searcher: media search service.
// Returns:
//   - *MediaHandler: initialized handler.
func NewMediaHandler(searcher MediaSearcher) *MediaHandler {
	return &MediaHandler{searcher: searcher}
}

// mediaRequest distinguishes an omitted count from an explicit zero.
type mediaRequest struct {
	Prompt      string           `json:"prompt" binding:"required"`
	Count       *int             `json:"count"`
	Kind        domain.MediaKind `json:"kind"`
	MinDuration int              `json:"min_duration"`
}

func (r mediaRequest) toSearchRequest(defaultCount int) service.SearchRequest {
	count := defaultCount
	if r.Count != nil {
		count = *r.Count
	}
	return service.SearchRequest{
		Prompt:      r.Prompt,
		Count:       count,
		Kind:        r.Kind,
		MinDuration: r.MinDuration,
	}
}

// Search handles POST /api/v1/media/search.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MediaHandler) Search(c *gin.Context) {
	var req mediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), req.toSearchRequest(defaultSearchCount))
	if err != nil {
		writeSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Browse handles POST /api/v1/media/browse.
func (h *MediaHandler) Browse(c *gin.Context) {
	var req mediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	results, err := h.searcher.Browse(c.Request.Context(), req.toSearchRequest(defaultBrowseCount))
	if err != nil {
		writeSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}

func writeSearchError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.CtxError(c.Request.Context(), "Media search failed: error=%v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      "Search failed: " + err.Error(),
		"request_id": logger.RequestID(c.Request.Context()),
	})
}
