package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/top-movies/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	searchPath  = "/search/movie"
	detailsPath = "/movie/"
	// maxErrorBody caps how much of an error response is kept for logging
	maxErrorBody = 512
)

// TMDBClient implements the Catalog interface against the TMDB REST API
type TMDBClient struct {
	client  *http.Client
	limiter *rate.Limiter
	config  *Config
}

type searchResponse struct {
	Page    int         `json:"page"`
	Results []Candidate `json:"results"`
}

// NewTMDBClient creates a new catalog client instance
func NewTMDBClient(cfg *Config) (*TMDBClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("catalog rate limit must be positive")
	}

	// Create HTTP client with connection pooling
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	// Token bucket; rate.Limit is events per second
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)

	return &TMDBClient{
		client:  client,
		limiter: limiter,
		config:  cfg,
	}, nil
}

// Search returns the catalog's candidates for a title
func (c *TMDBClient) Search(ctx context.Context, title string) ([]Candidate, error) {
	query := url.Values{}
	query.Set("query", title)
	query.Set("include_adult", "false")
	query.Set("page", "1")

	log.Info().Str("title", title).Msg("Searching catalog")

	var resp searchResponse
	if err := c.getJSON(ctx, OpSearch, searchPath, query, &resp); err != nil {
		return nil, err
	}

	log.Info().Str("title", title).Int("count", len(resp.Results)).Msg("Catalog search completed")
	return resp.Results, nil
}

// Details fetches a single movie record by its catalog id
func (c *TMDBClient) Details(ctx context.Context, externalID int64) (*Details, error) {
	if externalID <= 0 {
		return nil, &UpstreamError{Operation: OpDetails, Err: fmt.Errorf("invalid catalog id %d", externalID)}
	}

	var details Details
	path := detailsPath + strconv.FormatInt(externalID, 10)
	if err := c.getJSON(ctx, OpDetails, path, url.Values{}, &details); err != nil {
		return nil, err
	}

	log.Info().Int64("externalID", externalID).Str("title", details.Title).Msg("Fetched catalog details")
	return &details, nil
}

// getJSON performs a single rate-limited GET and decodes the JSON body into out.
// Failures are not retried.
func (c *TMDBClient) getJSON(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &UpstreamError{Operation: op, Err: fmt.Errorf("rate limiter error: %w", err)}
	}

	if c.config.Language != "" {
		query.Set("language", c.config.Language)
	}
	target := strings.TrimRight(c.config.BaseURL, "/") + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &UpstreamError{Operation: op, Err: fmt.Errorf("create request error: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordCatalogRequest(op, 0, time.Since(start))
		return &UpstreamError{Operation: op, Err: fmt.Errorf("request error: %w", err)}
	}
	defer resp.Body.Close()
	metrics.RecordCatalogRequest(op, resp.StatusCode, time.Since(start))

	log.Debug().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Str("path", path).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &UpstreamError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(msg),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %v", ErrMalformedPayload, err),
		}
	}
	return nil
}

// GetLimiter returns the rate limiter for testing purposes
func (c *TMDBClient) GetLimiter() *rate.Limiter {
	return c.limiter
}

// GetRateLimit returns the configured rate limit
func (c *TMDBClient) GetRateLimit() float64 {
	return c.config.RateLimit
}
