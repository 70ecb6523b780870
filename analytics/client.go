package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultHTTPTimeout = 30 * time.Second

// Client is an HTTP client for the course analytics API. It performs the
// network call, negotiates the response format via the Accept header, maps
// error status codes to the package's sentinel errors, and decodes the body
// according to the requested DataFormat.
//
// A Client holds no mutable state after construction and is safe for
// concurrent use.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	limiter    limiter
}

type limiter interface {
	Wait(context.Context) error
}

// ClientOption configures optional client behaviour.
type ClientOption func(*Client)

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithAuthToken sets the API token sent in the Authorization header.
func WithAuthToken(token string) ClientOption {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithRateLimit throttles outgoing requests to ratePerSecond.
func WithRateLimit(ratePerSecond float64) ClientOption {
	return func(c *Client) {
		if ratePerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
		}
	}
}

// NewClient creates a new analytics API client. baseURL points at the API
// root (e.g. http://localhost:9001/api/v0); a trailing slash is tolerated.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Course returns an accessor for analytics about a single course. courseID is
// embedded verbatim into request paths (e.g. edX/DemoX/Demo_Course).
func (c *Client) Course(courseID string) *Course {
	return &Course{client: c, CourseID: courseID}
}

// Status returns an accessor for the API health endpoints.
func (c *Client) Status() *Status {
	return &Status{client: c}
}

// Get requests path relative to the API root and decodes the response
// according to format: JSON bodies are decoded into maps and slices (any),
// CSV bodies are returned as a raw string.
//
// A 404 response is reported as ErrNotFound, a 400 as ErrInvalidRequest, and
// any other non-2xx status or network failure as an error wrapping
// ErrTransport.
func (c *Client) Get(ctx context.Context, path string, format DataFormat) (any, error) {
	resp, err := c.do(ctx, path, format)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if format == CSV {
		return string(body), nil
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return doc, nil
}

// HasResource reports whether the API answers the given path with a 200. The
// response body is ignored.
func (c *Client) HasResource(ctx context.Context, path string) bool {
	resp, err := c.do(ctx, path, JSON)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) do(ctx context.Context, path string, format DataFormat) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", format.ContentType())
	if c.authToken != "" {
		req.Header.Set("Authorization", "Token "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %v", ErrTransport, err)
	}

	return resp, nil
}

func checkStatus(statusCode int) error {
	switch {
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusBadRequest:
		return ErrInvalidRequest
	case statusCode < 200 || statusCode > 299:
		return fmt.Errorf("%w: unexpected status code %d", ErrTransport, statusCode)
	}
	return nil
}
