package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Version is the figma-analyzer release version.
const Version = "0.3.0"

const (
	figmaAPIBase = "https://api.figma.com/v1"
	maxRetries   = 3
)

// ErrInvalidURL is returned when a URL does not point at a Figma file.
var ErrInvalidURL = errors.New("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and optimized transport settings for handling large files.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	backoff     time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackoff sets the base delay between retries. The n-th retry waits n*backoff.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// NewClient creates a new Figma API client with the provided personal access token.
// The client is configured with connection pooling, disabled HTTP/2 (for large file stability),
// and a 10-minute timeout for very large files.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	// Configure transport for better handling of large files
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var fileKeyRe = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:/|\?|#|$)`)

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports both /file/ and /design/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	// Anchored to ensure the entire URL matches the expected pattern and prevent bypass attacks.
	matches := fileKeyRe.FindStringSubmatch(figmaURL)
	if len(matches) < 2 {
		return "", ErrInvalidURL
	}
	return matches[1], nil
}

var nodesPathRe = regexp.MustCompile(`/nodes/([^/?#]+)`)

// ExtractNodeIDs returns the node IDs referenced by a Figma URL, in order and without duplicates.
// It understands the node-id query parameter, a #id fragment and a /nodes/id path segment.
// The URL-safe "123-456" form is normalized to the API form "123:456".
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	u, err := url.Parse(figmaURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	var raw string
	switch {
	case u.Query().Get("node-id") != "":
		raw = u.Query().Get("node-id")
	case u.Fragment != "":
		raw = u.Fragment
	default:
		if m := nodesPathRe.FindStringSubmatch(u.Path); len(m) == 2 {
			raw = m[1]
		}
	}

	ids := []string{}
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if !strings.Contains(id, ":") {
			id = strings.ReplaceAll(id, "-", ":")
		}
		ids = append(ids, id)
	}

	return deduplicateNodeIDs(ids), nil
}

func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// GetFile retrieves complete file data including document structure, styles, and metadata.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*FileResponse, error) {
	var fileResp FileResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey), nil, &fileResp); err != nil {
		return nil, err
	}
	return &fileResp, nil
}

// GetFileNodes retrieves the document subtrees of the given node IDs.
func (c *Client) GetFileNodes(ctx context.Context, fileKey string, nodeIDs []string) (*NodesResponse, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))

	var nodesResp NodesResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey)+"/nodes", q, &nodesResp); err != nil {
		return nil, err
	}
	return &nodesResp, nil
}

// GetImages asks the render API for download URLs of the given nodes.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*ImagesResponse, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	q.Set("format", format)
	q.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))
	q.Set("use_absolute_bounds", "true")

	var imgResp ImagesResponse
	if err := c.get(ctx, "/images/"+url.PathEscape(fileKey), q, &imgResp); err != nil {
		return nil, err
	}
	if imgResp.Err != nil && *imgResp.Err != "" {
		return nil, fmt.Errorf("render API error: %s", *imgResp.Err)
	}
	return &imgResp, nil
}

// get performs a GET request and decodes the JSON body into out.
// Retries up to 3 attempts with linear backoff on transport errors, 429 and 5xx responses.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, retry, err := c.do(ctx, endpoint, attempt)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		lastErr = err
		if !retry || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	return lastErr
}

func (c *Client) do(ctx context.Context, endpoint string, attempt int) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Figma-Token", c.accessToken)
	// Disable HTTP/2 to avoid stream errors with large files
	req.Header.Set("Connection", "close")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("attempt %d failed to execute request: %w", attempt, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("attempt %d failed to read response body: %w", attempt, err)
	}

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, false, nil
}

// APIError is a non-200 response from the Figma API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}
