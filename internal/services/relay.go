package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/audiovault/internal/shared"
)

const defaultRelayURL = "http://localhost:8080"

// RelayClient submits command strings to a remote execution relay.
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRelayClient creates a client for the relay at baseURL.
func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if baseURL == "" {
		baseURL = defaultRelayURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RelayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw relay response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (c *RelayClient) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// Execute posts command to path and decodes the relay's answer.
//
// Transport failures wrap [shared.ErrNetwork]; a non-2xx answer wraps
// [shared.ErrExecution] with the relay's error message.
func (c *RelayClient) Execute(ctx context.Context, path, command string) (*RelayResponse, error) {
	data, err := json.Marshal(RelayRequest{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.Post(ctx, path, data)
	if err != nil {
		return nil, err
	}

	var out RelayResponse
	decodeErr := json.Unmarshal(resp.Body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(resp.Body))
		}
		return &out, fmt.Errorf("%w: relay returned %d: %s", shared.ErrExecution, resp.StatusCode, msg)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: invalid relay response: %v", shared.ErrNetwork, decodeErr)
	}
	return &out, nil
}
