package handlers

import (
	"errors"
	"net/http"

	"meteora/internal/clients"
	"meteora/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError ошибки сервисов несут свой HTTP статус, остальное отдается как 500
func respondError(c *gin.Context, err error) {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Detail})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// respondClientError для хендлеров, работающих с клиентами провайдеров напрямую
func respondClientError(c *gin.Context, err error, provider string) {
	var statusErr *clients.StatusError
	switch {
	case errors.Is(err, clients.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": provider + " API key not configured"})
	case errors.As(err, &statusErr):
		c.JSON(statusErr.Status, gin.H{"error": provider + " API error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
