// Package rerankhttp is a client for hosted cross-encoder rerank endpoints
// that speak the common rerank JSON shape (Cohere v2, Jina, and compatibles):
// request {model, query, documents, top_n}, response {results: [{index,
// relevance_score}]}.
package rerankhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Client calls one rerank endpoint.
type Client struct {
	name       string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds rerank endpoint settings.
type Config struct {
	Name     string // stage name for logs/metrics, e.g. "cohere"
	Endpoint string // full URL, e.g. https://api.cohere.com/v2/rerank
	APIKey   string
	Model    string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// New creates a rerank client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		name:       cfg.Name,
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// Name returns the stage name.
func (c *Client) Name() string { return c.name }

// Available reports whether this stage has credentials configured.
func (c *Client) Available() bool { return c.apiKey != "" && c.endpoint != "" }

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores documents against the query and returns document indices in
// relevance order, at most topN of them.
func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) ([]int, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	body, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank API error %d: %s", resp.StatusCode, string(detail))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("empty rerank response")
	}

	// Endpoints return results sorted, but order defensively anyway.
	sort.SliceStable(parsed.Results, func(i, j int) bool {
		return parsed.Results[i].RelevanceScore > parsed.Results[j].RelevanceScore
	})

	indices := make([]int, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("rerank index %d out of range", r.Index)
		}
		indices = append(indices, r.Index)
	}
	if len(indices) > topN {
		indices = indices[:topN]
	}

	return indices, nil
}
