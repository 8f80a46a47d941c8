// Package dmr is a minimal client for Docker Model Runner's OpenAI-compatible
// engine API, reached over the Docker Desktop unix socket.
package dmr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
)

// engineURL is the llama.cpp engine prefix. The host part is ignored since
// every request is dialed through the socket.
const engineURL = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1"

// Client posts JSON to the engine API.
type Client struct {
	httpClient *http.Client
}

// New returns a client that dials socketPath for every request.
func New(socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}

	var dialer net.Dialer
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", socketPath)
		},
	}
	return &Client{httpClient: &http.Client{Transport: transport}}, nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

// envelope is the error shape shared by all engine responses.
type envelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Post sends in as JSON to endpoint (e.g. "/embeddings") and decodes the
// response into out. An error object in a 200 response is reported as an error.
func (c *Client) Post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, engineURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if env.Error != nil {
		return fmt.Errorf("API error: %s", env.Error.Message)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
