// Package ticketing talks to the external events provider.
package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
)

// Query is the provider's filter payload.  The provider expects French
// field names.
type Query struct {
	City      string   `json:"ville"`
	Interests []string `json:"interet"`
}

// Client calls the provider over HTTP.  It performs exactly one request per
// call and never retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchEvents posts q to the provider and decodes the event list.  Any
// transport error, non-2xx status or undecodable body is returned as an
// error; no partial result is ever returned.
func (c *Client) FetchEvents(ctx context.Context, q Query) ([]model.ExternalEvent, error) {
	if q.Interests == nil {
		q.Interests = []string{}
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	c.logger.Debug("provider responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.Int("bytes", len(body)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var events []model.ExternalEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if events == nil {
		events = []model.ExternalEvent{}
	}
	return events, nil
}
