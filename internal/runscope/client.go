package runscope

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the root of the Runscope REST API.
	DefaultBaseURL = "https://api.runscope.com"
	// DefaultPageBaseURL is the root of the human-facing Runscope dashboard.
	DefaultPageBaseURL = "https://www.runscope.com"
)

// Response is the raw outcome of a successful API call. The body is kept as a
// string; decoding is left to the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Client issues authenticated calls against the Runscope API.
type Client struct {
	baseURL    string
	pages      Pages
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient  *http.Client
	logger      *slog.Logger
	timeout     time.Duration
	pageBaseURL string
	rateLimit   float64
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("runscope: baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{pageBaseURL: DefaultPageBaseURL}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{}
	if cfg.httpClient != nil {
		c := *cfg.httpClient
		httpClient = &c
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var limiter *rate.Limiter
	if cfg.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), 1)
	}

	return &Client{
		baseURL:    baseURL,
		pages:      NewPages(cfg.pageBaseURL),
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("runscope: negative timeout %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithPageBaseURL overrides the dashboard root used for page links.
func WithPageBaseURL(u string) Option {
	return func(cfg *clientConfig) error {
		if u == "" {
			return fmt.Errorf("runscope: page base URL is required")
		}
		cfg.pageBaseURL = u
		return nil
	}
}

// WithRateLimit paces outgoing requests to perSecond. Zero leaves requests unpaced.
func WithRateLimit(perSecond float64) Option {
	return func(cfg *clientConfig) error {
		if perSecond < 0 {
			return fmt.Errorf("runscope: negative rate limit %v", perSecond)
		}
		cfg.rateLimit = perSecond
		return nil
	}
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Pages returns the page link builder matching this client's dashboard root.
func (c *Client) Pages() Pages { return c.pages }

// do executes one request and returns the raw body. Non-2xx statuses become *APIError.
func (c *Client) do(ctx context.Context, method, uri, operation, token string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", operation, err)
		}
	}

	c.logger.InfoContext(ctx, "API request", "operation", operation, "method", method, "url", uri)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env Envelope[json.RawMessage]
		if json.Unmarshal(body, &env) == nil && env.Error != nil && env.Error.Message != "" {
			return nil, newAPIError(operation, resp.StatusCode, env.Error.Message)
		}
		msg := string(body)
		if msg == "" {
			msg = resp.Status
		}
		return nil, newAPIError(operation, resp.StatusCode, msg)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}

// ReadToken reads the first line of a file (e.g. .runscope-token) and returns it trimmed.
func ReadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	return line, nil
}
