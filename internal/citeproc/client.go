package citeproc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cassius-cv/cassius/internal/config"
)

const (
	// DefaultTimeout is the per-request timeout for formatting calls.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps formatting requests per second across all ports.
	RateLimit = 20.0
)

// Errors returned by the formatting client.
var (
	// ErrServer indicates the formatting service responded with an
	// error status.
	ErrServer = errors.New("citeproc server returned error status")

	// ErrBadResponse indicates the service response was not a valid
	// bibliography payload.
	ErrBadResponse = errors.New("malformed citeproc response")
)

// Client posts CSL-JSON items to citeproc-js-server instances and
// returns the rendered bibliography fragments.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	server     string
	ports      []int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithServer overrides the server URL template (for testing).
// The template may contain a [[port]] placeholder.
func WithServer(server string, ports ...int) ClientOption {
	return func(c *Client) {
		c.server = server
		if len(ports) > 0 {
			c.ports = ports
		}
	}
}

// NewClient creates a formatting client for the configured server
// instances.
func NewClient(cfg config.CiteprocConfig, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		server:     cfg.Server,
		ports:      cfg.Ports,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Port returns the instance port for the n-th request, assigned
// round-robin.
func (c *Client) Port(n int) int {
	if len(c.ports) == 0 {
		return 0
	}
	return c.ports[n%len(c.ports)]
}

// serverURL substitutes the port into the endpoint template.
func (c *Client) serverURL(port int) string {
	return strings.ReplaceAll(c.server, "[[port]]", strconv.Itoa(port))
}

// bibliographyResponse mirrors the citeproc-js-server payload: a
// two-element array of metadata and rendered fragment list.
type bibliographyResponse struct {
	Bibliography []json.RawMessage `json:"bibliography"`
}

// Format posts one item to the instance on port and returns its
// rendered bibliography fragment. A formatted-but-empty bibliography
// yields "". Each item is sent in its own request so the style's
// repeated-author substitution never collapses names across records.
func (c *Client) Format(ctx context.Context, item *Item, style string, port int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"items": map[string]*Item{item.ID: item},
	})
	if err != nil {
		return "", fmt.Errorf("encoding item %s: %w", item.ID, err)
	}

	url := c.serverURL(port) + "?bibliography=1&responseformat=json&style=" + style
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting item %s: %w", item.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: HTTP %d", ErrServer, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response for %s: %w", item.ID, err)
	}

	var decoded bibliographyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(decoded.Bibliography) < 2 {
		return "", fmt.Errorf("%w: missing fragment list", ErrBadResponse)
	}

	var fragments []string
	if err := json.Unmarshal(decoded.Bibliography[1], &fragments); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(fragments) == 0 {
		return "", nil
	}
	return fragments[0], nil
}
