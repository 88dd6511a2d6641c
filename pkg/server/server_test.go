package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	figmaanalyzer "github.com/kataras/figma-analyzer"
	"github.com/kataras/figma-analyzer/internal/logging"
	"github.com/kataras/figma-analyzer/pkg/figma"
)

const buttonTree = `{
  "id": "1:2",
  "name": "Sign up button",
  "type": "FRAME",
  "cornerRadius": 8,
  "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0, "a": 1}}],
  "children": [{"id": "1:3", "type": "TEXT", "characters": "Join", "style": {"fontFamily": "Inter", "fontSize": 14}}]
}`

type fakeFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeFetcher) fetch(_ context.Context, fileURL string, nodeIDs []string) (*figmaanalyzer.Tree, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var root figma.Node
	if err := json.Unmarshal([]byte(buttonTree), &root); err != nil {
		return nil, err
	}
	return &figmaanalyzer.Tree{FileKey: "KEY", FileName: "Landing", Root: &root}, nil
}

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	s, err := New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestAnalyze_Document(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, out := post(t, ts, `{"document": `+buttonTree+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	tokens := out["designTokens"].(map[string]any)
	assert.Equal(t, []any{"#FF0000"}, tokens["colors"])

	summary := out["components"].(map[string]any)["summary"].(map[string]any)
	assert.Equal(t, 1.0, summary["buttonCount"])
	assert.Contains(t, out["context"], "- Buttons: 1")
	assert.Equal(t, "Sign up button", out["fileName"])
}

func TestAnalyze_URLUsesCache(t *testing.T) {
	f := &fakeFetcher{}
	s, err := New(Config{Fetch: f.fetch, CacheSize: 4, Logger: logging.NewNop()})
	require.NoError(t, err)
	ts := httptest.NewServer(s)
	defer ts.Close()

	body := `{"url": "https://www.figma.com/design/KEY/Landing", "nodeId": "1-2"}`
	for range 3 {
		resp, out := post(t, ts, body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Landing", out["fileName"])
	}
	assert.Equal(t, int32(1), f.calls.Load())

	// The same node addressed through the URL shares the cache entry.
	post(t, ts, `{"url": "https://www.figma.com/design/KEY/Landing?node-id=1-2"}`)
	assert.Equal(t, int32(1), f.calls.Load())

	assert.Equal(t, 3.0, testutil.ToFloat64(s.metrics.cache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.cache.WithLabelValues("miss")))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.metrics.analyses.WithLabelValues("url", "ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.metrics.components.WithLabelValues("button")))
}

func TestAnalyze_NoCache(t *testing.T) {
	f := &fakeFetcher{}
	ts := newTestServer(t, Config{Fetch: f.fetch})

	for range 2 {
		resp, _ := post(t, ts, `{"url": "https://www.figma.com/file/KEY/x"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		body   string
		status int
	}{
		{"invalid body", Config{}, `{`, http.StatusBadRequest},
		{"missing source", Config{}, `{}`, http.StatusBadRequest},
		{"url without fetcher", Config{}, `{"url": "https://www.figma.com/file/KEY/x"}`, http.StatusServiceUnavailable},
		{"invalid url", Config{Fetch: (&fakeFetcher{}).fetch}, `{"url": "https://example.com/x"}`, http.StatusBadRequest},
		{"node not found", Config{Fetch: (&fakeFetcher{err: fmt.Errorf("wrap: %w", figmaanalyzer.ErrNodeNotFound)}).fetch}, `{"url": "https://www.figma.com/file/KEY/x"}`, http.StatusNotFound},
		{"upstream failure", Config{Fetch: (&fakeFetcher{err: &figma.APIError{StatusCode: 500}}).fetch}, `{"url": "https://www.figma.com/file/KEY/x"}`, http.StatusBadGateway},
		{"too large", Config{MaxNodes: 1}, `{"document": ` + buttonTree + `}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.cfg)
			resp, out := post(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, figma.Version, health["version"])

	post(t, ts, `{"document": `+buttonTree+`}`)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(b), `figma_analyzer_analyses_total{outcome="ok",source="document"} 1`)
	assert.Contains(t, string(b), `figma_analyzer_tree_nodes_count 1`)
}

func TestCacheKey(t *testing.T) {
	a, err := cacheKey("https://www.figma.com/design/KEY/x?node-id=1-2", nil)
	require.NoError(t, err)
	b, err := cacheKey("https://www.figma.com/design/KEY/y", []string{"1:2"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = cacheKey("nope", nil)
	assert.ErrorIs(t, err, figma.ErrInvalidURL)
}
