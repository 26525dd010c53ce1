// Package remote implements the card store contracts against another
// deployment's /api/v1/store endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/light-bringer/cardsync-service/internal/app/card/contracts"
)

const (
	updatePath = "/api/v1/store/update"
	dataPath   = "/api/v1/store/data"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// ErrTransport wraps every failure of the call itself, as opposed to a
// field-level failure reported in the result.
var ErrTransport = errors.New("remote store unavailable")

// Client is an HTTP card store.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for baseURL. A non-positive timeout uses the
// default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client on an existing http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// UpdateFields implements contracts.CardWriter.
func (c *Client) UpdateFields(ctx context.Context, req *contracts.WriteRequest) (*contracts.WriteResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode write request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+updatePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result contracts.WriteResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LoadAll implements contracts.CardReader.
func (c *Client) LoadAll(ctx context.Context) (*contracts.ReadResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dataPath, nil)
	if err != nil {
		return nil, err
	}

	var result contracts.ReadResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends req and decodes the JSON body into out. Server errors and
// undecodable bodies are transport failures; 4xx bodies still carry a
// result.
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrTransport, req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response (status %d): %w", ErrTransport, req.URL.Path, resp.StatusCode, err)
	}
	return nil
}
