package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"telegramdw/internal/models"
	"telegramdw/internal/repository"
)

// AnalyticsHandler serves the analytical endpoints over the warehouse.
type AnalyticsHandler struct {
	repo   repository.AnalyticsRepository
	logger *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(repo repository.AnalyticsRepository, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo, logger: logger}
}

// TopProducts handles GET /api/reports/top-products?limit=N.
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}

	items, err := h.repo.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to fetch top products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch top products"})
		return
	}
	if items == nil {
		items = []models.TopProduct{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ChannelActivity handles GET /api/channels/:name/activity.
func (h *AnalyticsHandler) ChannelActivity(c *gin.Context) {
	channel := c.Param("name")

	points, err := h.repo.ChannelActivity(c.Request.Context(), channel)
	if err != nil {
		h.logger.Error("Failed to fetch channel activity",
			zap.String("channel", channel), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch channel activity"})
		return
	}
	if len(points) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found or no activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": channel, "points": points})
}

// SearchMessages handles GET /api/search/messages?query=...&limit=N.
func (h *AnalyticsHandler) SearchMessages(c *gin.Context) {
	query := c.Query("query")
	if len(query) < 2 || len(query) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be between 2 and 100 characters"})
		return
	}

	limit, ok := parseLimit(c, 20)
	if !ok {
		return
	}

	results, err := h.repo.SearchMessages(c.Request.Context(), query, limit)
	if err != nil {
		h.logger.Error("Failed to search messages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search messages"})
		return
	}
	if results == nil {
		results = []models.MessageResult{}
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}

func parseLimit(c *gin.Context, def int) (int, bool) {
	raw := c.DefaultQuery("limit", strconv.Itoa(def))
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return 0, false
	}
	return limit, true
}
