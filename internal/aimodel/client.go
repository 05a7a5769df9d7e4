// Package aimodel queries an external AI-text classification service. It is
// an optional collaborator of the AI detector; the analyzers fall back to
// heuristics alone when it is absent or failing.
package aimodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// Client scores text batches via an external classification API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithModel sets the classification model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new classification client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   defaultModel,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type scoreRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// ScoreText returns a bot-likelihood score in [0,100] for the contents.
func (c *Client) ScoreText(ctx context.Context, contents []string) (float64, error) {
	if len(contents) == 0 {
		return 50, nil
	}

	reqBody := scoreRequest{
		Model: c.model,
		Input: contents,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/classifications", bytes.NewReader(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var scoreResp scoreResponse
	if err := json.Unmarshal(body, &scoreResp); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}

	score := scoreResp.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
