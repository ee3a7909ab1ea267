package iwls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL  = "https://api-iwls.dfo-mpo.gc.ca/api/v1/"
	DefaultTimeout  = 10 * time.Second
	JSONContentType = "application/json"
	RequestIDHeader = "X-Request-ID"

	maxErrorMessageLength = 256
)

var (
	ErrBaseURLNotSet    = fmt.Errorf("base URL not set")
	ErrHTTPClientNotSet = fmt.Errorf("HTTP client not set")
	ErrClientNotReady   = fmt.Errorf("IWLS client is not ready")
)

// Client issues GET requests against the IWLS REST API and decodes JSON
// responses. It holds no connection state of its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   Language
	logger     *slog.Logger

	lastURL atomic.Value
}

func NewClient(baseURL string, httpClient *http.Client, language Language, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		language:   language,
		logger:     logger,
	}
}

func (c *Client) IsReady() bool {
	if c.logger == nil {
		fmt.Println("Logger of IWLS client is not initialized")
		return false
	}

	if err := c.readiness(); err != nil {
		c.logger.Error("IWLS client is not ready", "error", err)
		return false
	}

	return true
}

func (c *Client) readiness() error {
	switch {
	case c.logger == nil:
		return ErrClientNotReady
	case c.httpClient == nil:
		return fmt.Errorf("%w: %w", ErrClientNotReady, ErrHTTPClientNotSet)
	case c.baseURL == "":
		return fmt.Errorf("%w: %w", ErrClientNotReady, ErrBaseURLNotSet)
	}
	return nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Language() Language {
	return c.language
}

// LastURL returns the most recently requested URL, or "" before the first call.
func (c *Client) LastURL() string {
	if v, ok := c.lastURL.Load().(string); ok {
		return v
	}
	return ""
}

// Get fetches path (relative to the base URL) and decodes the JSON body into
// out. It returns the requested URL so callers can name it in their own errors.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (string, error) {
	content, resourceURL, err := c.retrieveContent(ctx, path, query)
	if err != nil {
		return resourceURL, err
	}

	if err := json.NewDecoder(content).Decode(out); err != nil {
		return resourceURL, &DataError{Resource: resourceURL, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return resourceURL, nil
}

// GetRaw fetches path and returns the decoded JSON document without imposing a schema.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) (any, error) {
	var document any
	if _, err := c.Get(ctx, path, query, &document); err != nil {
		return nil, err
	}
	return document, nil
}

func (c *Client) ResourceURL(path string, query url.Values) (string, error) {
	resourceURL, err := url.Parse(c.baseURL + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid resource path %q: %w", path, err)
	}

	if len(query) > 0 {
		resourceURL.RawQuery = query.Encode()
	}
	return resourceURL.String(), nil
}

func (c *Client) retrieveContent(ctx context.Context, path string, query url.Values) (io.Reader, string, error) {
	if err := c.readiness(); err != nil {
		return nil, "", err
	}

	resourceURL, err := c.ResourceURL(path, query)
	if err != nil {
		return nil, "", err
	}
	c.lastURL.Store(resourceURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)
	if err != nil {
		return nil, resourceURL, err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", JSONContentType)
	req.Header.Set(RequestIDHeader, requestID)
	if c.language.IsValid() {
		req.Header.Set("Accept-Language", c.language.String())
	}

	c.logger.Debug("Requesting IWLS resource", "url", resourceURL, "requestID", requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("IWLS request failed", "url", resourceURL, "requestID", requestID, "error", err)
		return nil, resourceURL, &UpstreamError{URL: resourceURL, Err: err}
	}

	defer func(resp *http.Response) {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("Failed to close response body", "url", resourceURL, "error", err)
		}
	}(resp)

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resourceURL, &UpstreamError{URL: resourceURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("IWLS returned non-success status", "url", resourceURL, "status", resp.StatusCode, "requestID", requestID)
		return nil, resourceURL, &UpstreamError{
			URL:        resourceURL,
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(content)), maxErrorMessageLength),
		}
	}

	if len(bytes.TrimSpace(content)) == 0 {
		c.logger.Warn("No content received from URL", "url", resourceURL)
		return nil, resourceURL, &DataError{Resource: resourceURL, Err: fmt.Errorf("empty response body")}
	}

	c.logger.Debug("Content retrieved successfully", "url", resourceURL, "length", len(content), "requestID", requestID)
	return bytes.NewReader(content), resourceURL, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
