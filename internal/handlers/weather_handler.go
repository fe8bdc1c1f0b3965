package handlers

import (
	"net/http"
	"strconv"

	"meteora/internal/service"

	"github.com/gin-gonic/gin"
)

type WeatherHandler struct {
	service service.SearchService
}

func NewWeatherHandler(service service.SearchService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

func (h *WeatherHandler) SearchByCity(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := h.service.SearchByCity(ctx, c.Query("city"), c.Query("country"), c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *WeatherHandler) SearchByZip(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := h.service.SearchByZip(ctx, c.Query("zip_code"), c.Query("country"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *WeatherHandler) SearchByCoords(c *gin.Context) {
	ctx := c.Request.Context()

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a valid number"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a valid number"})
		return
	}

	resp, err := h.service.SearchByCoords(ctx, lat, lon)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *WeatherHandler) SearchByCityRange(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := h.service.SearchByCityRange(
		ctx,
		c.Query("city"),
		c.Query("country"),
		c.Query("state"),
		c.Query("start_date"),
		c.Query("end_date"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
