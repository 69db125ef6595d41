// Package repository fetches the institutional repository's JSON
// export and prepares the on-disk category structure.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cassius-cv/cassius/internal/config"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit keeps export requests polite; the endpoint serves a
	// whole profile per request so bursts are never needed.
	RateLimit = 2.0
)

// Errors returned by the export client.
var (
	// ErrNetwork indicates a connectivity problem with the repository.
	ErrNetwork = errors.New("network error communicating with repository")

	// ErrHTTPStatus indicates a non-success response from the endpoint.
	ErrHTTPStatus = errors.New("repository returned error status")
)

// Client fetches the EPrints exportview JSON for one user.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	url        string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithURL overrides the export URL (for testing).
func WithURL(url string) ClientOption {
	return func(c *Client) {
		c.url = url
	}
}

// NewClient creates an export client for the configured repository.
func NewClient(cfg config.RepositoryConfig, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		url:        ExportURL(cfg),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExportURL builds the exportview endpoint URL from the configured
// host and user segment, normalizing scheme and trailing slash.
func ExportURL(cfg config.RepositoryConfig) string {
	repo := cfg.Endpoint
	if !strings.HasPrefix(repo, "htt") {
		repo = "https://" + repo
	}
	if !strings.HasSuffix(repo, "/") {
		repo += "/"
	}
	return repo + "cgi/exportview/people/" + cfg.User + "/JSON/" + cfg.User + ".js"
}

// FetchExport downloads the raw JSON export.
func (c *Client) FetchExport(ctx context.Context) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrHTTPStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	return data, nil
}
