// Package apiclient talks to the admin API the way the chat widget does:
// retrieval through /api/search and generation through /api/generate.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/masa1023/site-concierge/internal/llm"
	"github.com/masa1023/site-concierge/internal/vectorstore"
	"github.com/masa1023/site-concierge/pkg/models"
)

// DefaultBaseURL is where the admin server listens by default.
const DefaultBaseURL = "http://localhost:3001"

// Config holds admin API client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration // zero means no client timeout
}

// Client calls the admin API. It satisfies chat.Searcher and llm.Generator,
// so a chat.Assistant can run entirely against a remote server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a new admin API client.
func New(config Config) *Client {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    baseURL,
	}
}

// Search posts query to /api/search.
func (c *Client) Search(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]models.SearchResult, error) {
	if opts == (vectorstore.SearchOptions{}) {
		opts = vectorstore.DefaultSearchOptions()
	}
	limit, distance := opts.Limit, opts.Distance
	if limit <= 0 {
		limit = vectorstore.DefaultLimit
	}

	var resp models.SearchResponse
	req := models.SearchRequest{Query: query, Limit: &limit, Distance: &distance}
	if err := c.post(ctx, "/api/search", req, &resp); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("search failed: unsuccessful response")
	}
	if resp.Results == nil {
		return []models.SearchResult{}, nil
	}
	return resp.Results, nil
}

// Generate posts prompt to /api/generate.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	var resp models.GenerateResponse
	req := models.GenerateRequest{Prompt: prompt, Temperature: &opts.Temperature}
	if opts.MaxOutputTokens > 0 {
		req.MaxOutputTokens = &opts.MaxOutputTokens
	}
	if err := c.post(ctx, "/api/generate", req, &resp); err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("generation failed: unsuccessful response")
	}
	return resp.Response, nil
}

// APIError is a non-2xx admin API response.
type APIError struct {
	StatusCode int
	Body       models.ErrorResponse
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("admin API error: %d", e.StatusCode)
	if e.Body.Error != "" {
		msg += ": " + e.Body.Error
	}
	if e.Body.Message != "" {
		msg += " (" + e.Body.Message + ")"
	}
	return msg
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("admin API request", "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, &apiErr.Body)
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
