package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type GroqClient interface {
	DescribeClimate(ctx context.Context, city, state, country string) (string, error)
	DescribePlaces(ctx context.Context, city, state, country string) (string, error)
}

type groqClient struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

type GroqConfig struct {
	APIKey string
	URL    string
	Model  string
}

func NewGroqClient(config GroqConfig) GroqClient {
	return &groqClient{
		apiKey: config.APIKey,
		url:    config.URL,
		model:  config.Model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *groqClient) DescribeClimate(ctx context.Context, city, state, country string) (string, error) {
	system := "You are a climate expert. Provide short, factual descriptions."
	user := fmt.Sprintf("Describe the climate of %s, %s, %s in under 3 sentences.", city, country, state)
	return c.complete(ctx, system, user)
}

func (c *groqClient) DescribePlaces(ctx context.Context, city, state, country string) (string, error) {
	system := "You are a places expert. Provide short, factual descriptions."
	user := fmt.Sprintf("Describe the places of interest in %s, %s, %s in under 3 sentences.", city, country, state)
	return c.complete(ctx, system, user)
}

func (c *groqClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("Groq: %w", ErrNotConfigured)
	}

	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Model:       c.model,
		Temperature: 0.7,
		MaxTokens:   150,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: "Groq", Status: resp.StatusCode}
	}

	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode JSON: %w", err)
	}

	if len(data.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from API")
	}

	return strings.TrimSpace(data.Choices[0].Message.Content), nil
}
