// Package search provides a client for the Tavily web-search API.
// Search is best-effort enrichment: SearchOrEmpty runs under the
// SearchCall retry preset and suppresses terminal failures behind an
// empty result set, so a flaky search never aborts a report run.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/deepquery/dqf/logger"
	"github.com/deepquery/dqf/retry"
	"github.com/deepquery/dqf/zlog"
)

const defaultBaseURL = "https://api.tavily.com"

// Result is a single search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Options defines optional client configuration.
type Options struct {
	// BaseURL overrides the Tavily endpoint. Tests point it at a stub.
	BaseURL string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
	// MaxResults caps the number of hits per query.
	MaxResults int
	// Policy overrides the SearchCall retry preset.
	Policy *retry.Policy
	// Logger overrides the global zlog sink.
	Logger logger.Logger
}

// Client calls the Tavily search API.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpc      *http.Client
	policy     retry.Policy
	log        logger.Logger
}

// New creates a search client.
func New(apiKey string, opts *Options) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: 20,
		policy:     retry.SearchCall,
	}

	timeout := 240 * time.Second
	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.MaxResults > 0 {
			c.maxResults = opts.MaxResults
		}
		if opts.Policy != nil {
			c.policy = *opts.Policy
		}
		c.log = opts.Logger
	}
	c.httpc = &http.Client{Timeout: timeout}
	if c.log == nil {
		c.log = logger.NewZerologWith(zlog.Logger)
	}
	return c
}

// Search runs a query, retrying transient failures per the client's
// policy, and propagates the terminal failure.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	return retry.Do(ctx, func(ctx context.Context) ([]Result, error) {
		return c.search(ctx, query)
	}, c.policy, retry.WithName("search.tavily"), retry.WithLogger(c.log))
}

// SearchOrEmpty runs a query and suppresses any terminal failure behind
// an empty result set.
func (c *Client) SearchOrEmpty(ctx context.Context, query string) []Result {
	return retry.DoWithDefault(ctx, func(ctx context.Context) ([]Result, error) {
		return c.search(ctx, query)
	}, c.policy, []Result{}, retry.WithName("search.tavily"), retry.WithLogger(c.log))
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

func (c *Client) search(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		return nil, retry.Validation(errors.New("empty search query"))
	}

	body, err := json.Marshal(searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, retry.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, retry.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, retry.Timeout(err)
		}
		return nil, retry.Connectivity(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Connectivity(err)
	}
	if resp.StatusCode != http.StatusOK {
		se := fmt.Errorf("search: status %d: %s", resp.StatusCode, data)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, retry.RateLimit(se)
		case resp.StatusCode >= 500:
			return nil, retry.Transient(se)
		default:
			return nil, retry.Validation(se)
		}
	}

	var out searchResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, retry.Transient(fmt.Errorf("decode search response: %w", err))
	}
	return out.Results, nil
}
