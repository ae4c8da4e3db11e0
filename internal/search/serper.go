// Package search finds official tax forms on the web through the
// Serper.dev search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://google.serper.dev/search"

// Result is one organic search hit
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client queries Serper.dev for official tax form documents. The query
// is scoped to government domains and PDF results so hits are directly
// fetchable.
type Client struct {
	apiKey     string
	endpoint   string
	siteFilter string
	country    string
	httpClient *http.Client
}

// NewClient creates a search client. An empty API key yields a client
// that returns no results instead of failing, search is an optional
// capability.
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		siteFilter: "site:fbr.gov.pk OR site:.gov.pk",
		country:    "pk",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search runs the scoped form query and returns the organic results
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	payload := map[string]string{
		"q":  fmt.Sprintf("%s tax form filetype:pdf %s", query, c.siteFilter),
		"gl": c.country,
		"hl": "en",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed struct {
		Organic []Result `json:"organic"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return parsed.Organic, nil
}
