package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/errors"
)

// SearchHit is one organic result from the search provider.
type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

type SearchQuery struct {
	Q      string
	Num    int
	Window string // "h" or "d"
}

type SearchProvider interface {
	// Configured reports whether credentials are present. The sniper checks it
	// before issuing any request.
	Configured() bool
	Search(ctx context.Context, q SearchQuery) ([]SearchHit, error)
}

// SerperClient calls the Serper Google search API.
type SerperClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewSerperClient(cfg config.SearchConfig, logger *zap.Logger) *SerperClient {
	return &SerperClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *SerperClient) Configured() bool { return c.apiKey != "" }

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	TBS string `json:"tbs"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

type serperResponse struct {
	Organic []SearchHit `json:"organic"`
	Error   string      `json:"error,omitempty"`
}

func (c *SerperClient) Search(ctx context.Context, q SearchQuery) ([]SearchHit, error) {
	if !c.Configured() {
		return nil, errors.NotConfigured("SERPER_API_KEY is not configured")
	}

	body, err := json.Marshal(serperRequest{
		Q:   q.Q,
		Num: q.Num,
		TBS: "qdr:" + q.Window,
		GL:  "us",
		HL:  "en",
	})
	if err != nil {
		return nil, errors.Internal("encoding search request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal("creating search request", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable("executing search request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("search provider returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.RateLimit(msg, nil)
		}
		return nil, errors.Unavailable(msg, nil)
	}

	var out serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.ParseFailed("decoding search response", err)
	}
	if out.Error != "" {
		return nil, errors.Unavailable(out.Error, nil)
	}

	c.logger.Debug("search completed",
		zap.String("query", q.Q),
		zap.Int("hits", len(out.Organic)),
		zap.Duration("took", time.Since(start)))

	return out.Organic, nil
}
