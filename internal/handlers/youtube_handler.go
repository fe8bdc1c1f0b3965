package handlers

import (
	"net/http"
	"strconv"

	"meteora/internal/clients"

	"github.com/gin-gonic/gin"
)

type YouTubeHandler struct {
	client clients.YouTubeClient
}

func NewYouTubeHandler(client clients.YouTubeClient) *YouTubeHandler {
	return &YouTubeHandler{client: client}
}

func (h *YouTubeHandler) SearchLocations(c *gin.Context) {
	// Суффикс запроса отфильтровывает нерелевантные ролики
	h.search(c, " travel tourism places to visit")
}

func (h *YouTubeHandler) SearchWeather(c *gin.Context) {
	h.search(c, " weather forecast")
}

func (h *YouTubeHandler) search(c *gin.Context, querySuffix string) {
	ctx := c.Request.Context()

	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	maxResults, err := strconv.Atoi(c.DefaultQuery("max_results", "5"))
	if err != nil || maxResults < 1 {
		maxResults = 5
	}

	videos, err := h.client.SearchVideos(ctx, query+querySuffix, maxResults)
	if err != nil {
		respondClientError(c, err, "YouTube")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_results": len(videos),
		"videos":        videos,
	})
}
