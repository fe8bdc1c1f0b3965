package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"

	"meteora/internal/models"
	"meteora/internal/service"

	"github.com/gin-gonic/gin"
)

type CrudHandler struct {
	service service.HistoryService
}

func NewCrudHandler(service service.HistoryService) *CrudHandler {
	return &CrudHandler{service: service}
}

func (h *CrudHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.service.GetAll(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CrudHandler) GetHistoryByID(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		return
	}

	agg, err := h.service.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, agg)
}

func (h *CrudHandler) UpdateHistory(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		return
	}

	var updates models.WeatherSearchUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.service.Update(ctx, id, updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CrudHandler) DeleteHistory(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.service.Delete(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CrudHandler) DeleteAllHistory(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.service.DeleteAll(ctx); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All searches and results deleted successfully",
	})
}

func (h *CrudHandler) FilterByCountry(c *gin.Context) { h.filter(c, "country") }
func (h *CrudHandler) FilterByCity(c *gin.Context)    { h.filter(c, "city") }
func (h *CrudHandler) FilterByState(c *gin.Context)   { h.filter(c, "state") }
func (h *CrudHandler) FilterByZipcode(c *gin.Context) { h.filter(c, "zipcode") }

func (h *CrudHandler) filter(c *gin.Context, field string) {
	ctx := c.Request.Context()

	list, err := h.service.Filter(ctx, field, c.Query("value"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CrudHandler) ExportHistory(c *gin.Context) {
	ctx := c.Request.Context()

	format := c.DefaultQuery("format", "csv")

	path, err := h.service.Export(ctx, format)
	if err != nil {
		respondError(c, err)
		return
	}

	var contentType string
	switch format {
	case "csv":
		contentType = "text/csv"
	default:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(path))
	c.File(path)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search id"})
		return 0, false
	}
	return uint(id), true
}
