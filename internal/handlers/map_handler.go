package handlers

import (
	"net/http"

	"meteora/internal/service"

	"github.com/gin-gonic/gin"
)

type MapHandler struct {
	service service.SearchService
}

func NewMapHandler(service service.SearchService) *MapHandler {
	return &MapHandler{service: service}
}

// GetCoordsByCity геокодирование без записи в историю
func (h *MapHandler) GetCoordsByCity(c *gin.Context) {
	ctx := c.Request.Context()

	location, err := h.service.LocateCity(ctx, c.Query("city"), c.Query("country"), c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}
