package handlers

import (
	"net/http"

	"meteora/internal/clients"

	"github.com/gin-gonic/gin"
)

type LLMHandler struct {
	client clients.GroqClient
}

func NewLLMHandler(client clients.GroqClient) *LLMHandler {
	return &LLMHandler{client: client}
}

func (h *LLMHandler) DescribeClimate(c *gin.Context) {
	ctx := c.Request.Context()

	city := c.Query("city")
	country := c.Query("country")
	if city == "" || country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city and country are required"})
		return
	}

	description, err := h.client.DescribeClimate(ctx, city, c.Query("state"), country)
	if err != nil {
		respondClientError(c, err, "Groq")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"city":                city,
		"country":             country,
		"climate_description": description,
		"provider":            "groq",
	})
}

func (h *LLMHandler) DescribePlaces(c *gin.Context) {
	ctx := c.Request.Context()

	city := c.Query("city")
	country := c.Query("country")
	if city == "" || country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city and country are required"})
		return
	}

	description, err := h.client.DescribePlaces(ctx, city, c.Query("state"), country)
	if err != nil {
		respondClientError(c, err, "Groq")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"city":               city,
		"country":            country,
		"places_description": description,
		"provider":           "groq",
	})
}
