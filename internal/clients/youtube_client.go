package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Video struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type YouTubeClient interface {
	SearchVideos(ctx context.Context, query string, maxResults int) ([]Video, error)
}

type youtubeClient struct {
	apiKey string
	url    string
	client *http.Client
}

type YouTubeConfig struct {
	APIKey string
	URL    string
}

func NewYouTubeClient(config YouTubeConfig) YouTubeClient {
	return &youtubeClient{
		apiKey: config.APIKey,
		url:    config.URL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *youtubeClient) SearchVideos(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("YouTube: %w", ErrNotConfigured)
	}

	params := url.Values{}
	params.Add("part", "snippet")
	params.Add("q", query)
	params.Add("maxResults", strconv.Itoa(maxResults))
	params.Add("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Meteora/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "YouTube", Status: resp.StatusCode}
	}

	var data youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	videos := make([]Video, 0, len(data.Items))
	for _, item := range data.Items {
		videos = append(videos, Video{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			URL:         "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		})
	}

	return videos, nil
}
