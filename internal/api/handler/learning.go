package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/reelsearch/internal/domain"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/service"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

// Learner is the learning surface the learning handler serves.
type Learner interface {
	Analyze(prompt string) service.PromptAnalysis
	Recommend(patternKey string) service.Recommendation
	Insights() service.Insights
	Similar(prompt string, limit int) []service.SimilarPrompt
	Suggest(prompt string) []string
	RecordFeedback(ctx context.Context, fb domain.UserFeedback) error
}

// LearningHandler exposes what the outcome learner knows and accepts
// explicit user ratings.
type LearningHandler struct {
	learner Learner
}

// NewLearningHandler creates a new learning handler.
func NewLearningHandler(learner Learner) *LearningHandler {
	return &LearningHandler{learner: learner}
}

type promptRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Analyze handles POST /api/v1/learning/analyze.
func (h *LearningHandler) Analyze(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, h.learner.Analyze(req.Prompt))
}

// Insights handles GET /api/v1/learning/insights.
func (h *LearningHandler) Insights(c *gin.Context) {
	c.JSON(http.StatusOK, h.learner.Insights())
}

// Recommendation handles GET /api/v1/learning/patterns/:key, returning the
// search advice learned for one pattern key.
func (h *LearningHandler) Recommendation(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Pattern key is required",
		})
		return
	}
	c.JSON(http.StatusOK, h.learner.Recommend(key))
}

// Similar handles GET /api/v1/learning/similar?prompt=&limit=.
func (h *LearningHandler) Similar(c *gin.Context) {
	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'prompt' is required",
		})
		return
	}

	limit := defaultSimilarLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Query parameter 'limit' must be a positive integer",
			})
			return
		}
		limit = min(n, maxSimilarLimit)
	}

	similar := h.learner.Similar(prompt, limit)
	c.JSON(http.StatusOK, gin.H{
		"similar": similar,
		"total":   len(similar),
	})
}

// Suggestions handles GET /api/v1/learning/suggestions?prompt=.
func (h *LearningHandler) Suggestions(c *gin.Context) {
	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'prompt' is required",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions": h.learner.Suggest(prompt),
	})
}

// feedbackRequest accepts either width/height or a "WxH" resolution.
type feedbackRequest struct {
	Prompt     string  `json:"prompt" binding:"required"`
	Query      string  `json:"query"`
	Rating     int     `json:"rating" binding:"required"`
	Duration   float64 `json:"duration"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Resolution string  `json:"resolution"`
	Quality    string  `json:"quality"`
	Comment    string  `json:"comment"`
}

// Feedback handles POST /api/v1/feedback.
func (h *LearningHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	fb := domain.UserFeedback{
		Prompt:   req.Prompt,
		Query:    req.Query,
		Rating:   req.Rating,
		Duration: req.Duration,
		Width:    req.Width,
		Height:   req.Height,
		Quality:  req.Quality,
		Comment:  req.Comment,
	}
	if fb.Width == 0 && fb.Height == 0 && req.Resolution != "" {
		w, hgt, err := parseResolution(req.Resolution)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fb.Width, fb.Height = w, hgt
	}

	if err := h.learner.RecordFeedback(c.Request.Context(), fb); err != nil {
		if errors.Is(err, service.ErrInvalidFeedback) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.CtxError(c.Request.Context(), "Failed to record feedback: error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record feedback: " + err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// parseResolution parses "1920x1080".
func parseResolution(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(strings.TrimSpace(s)), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q, expected WIDTHxHEIGHT", s)
	}
	return w, h, nil
}
