package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for feedID, feedConfig := range configs {
		feedInfo := map[string]interface{}{
			"feed_id": feedID,
			"name":    feedConfig.Name,
			"sources": len(feedConfig.URLs),
			"enabled": feedConfig.Settings.Enabled,
		}

		if total, published, err := h.itemRepo.GetItemStats(feedID); err == nil {
			feedInfo["items"] = total
			feedInfo["published"] = published
			feedInfo["unpublished"] = total - published
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// APIFetchFeed enqueues an out-of-schedule fetch for one feed.
func (h *Handler) APIFetchFeed(c *gin.Context) {
	feedID := c.Param("id")
	if feedID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed id parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(feedID); err != nil {
		slog.Error("Feed configuration not found", "feed", feedID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	if err := h.scheduler.EnqueueFetchFeed(feedID); err != nil {
		slog.Error("Error enqueueing fetch task", "feed", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue fetch task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch task enqueued",
		"feed":    feedID,
	})
}

// APIPublishFeed enqueues an out-of-schedule publish attempt for one feed.
func (h *Handler) APIPublishFeed(c *gin.Context) {
	feedID := c.Param("id")
	if feedID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed id parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(feedID); err != nil {
		slog.Error("Feed configuration not found", "feed", feedID, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	if err := h.scheduler.EnqueuePublishFeed(feedID); err != nil {
		slog.Error("Error enqueueing publish task", "feed", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue publish task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publish task enqueued",
		"feed":    feedID,
	})
}
