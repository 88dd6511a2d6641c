// Package server exposes the design analysis over HTTP.
//
//	POST /api/analyze   {"url": "...", "nodeId": "..."} or {"document": {...}}
//	GET  /healthz
//	GET  /metrics       Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	figmaanalyzer "github.com/kataras/figma-analyzer"
	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/kataras/figma-analyzer/pkg/formatter"
)

const maxBodyBytes = 32 << 20

// Config configures a Server.
type Config struct {
	Fetch     figmaanalyzer.FetchFunc // required to analyze by URL
	CacheSize int                     // fetched trees kept in memory, 0 disables caching
	MaxNodes  int                     // node budget, 0 = figmaanalyzer.DefaultMaxNodes, negative = unlimited
	Logger    *slog.Logger            // nil = slog.Default()
}

// Server serves design analyses over HTTP.
type Server struct {
	fetch    figmaanalyzer.FetchFunc
	cache    *lru.Cache[string, *figmaanalyzer.Tree]
	maxNodes int
	logger   *slog.Logger
	metrics  *metrics
	router   chi.Router
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	s := &Server{
		fetch:    cfg.Fetch,
		maxNodes: cfg.MaxNodes,
		logger:   cfg.Logger,
		metrics:  newMetrics(),
	}
	if s.maxNodes == 0 {
		s.maxNodes = figmaanalyzer.DefaultMaxNodes
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.NewWithEvict(cfg.CacheSize, func(key string, _ *figmaanalyzer.Tree) {
			s.logger.Debug("Evicting cached tree", "key", key)
		})
		if err != nil {
			return nil, fmt.Errorf("create tree cache: %w", err)
		}
		s.cache = cache
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": figma.Version})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Post("/api/analyze", s.handleAnalyze)

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Registry returns the Prometheus registry holding the server metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.metrics.registry
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully, giving outstanding requests 5 seconds to complete.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		return nil
	}
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	URL      string      `json:"url"`
	NodeID   string      `json:"nodeId"`
	Document *figma.Node `json:"document"`
}

// AnalyzeResponse is the body of a successful POST /api/analyze.
type AnalyzeResponse struct {
	*figmaanalyzer.Analysis
	FileName string `json:"fileName,omitempty"`
	Context  string `json:"context"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.logger.Warn("Analyze: invalid request body", "error", err)
		s.fail(w, "invalid", http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		tree   *figmaanalyzer.Tree
		source = "url"
		err    error
	)

	switch {
	case body.Document != nil:
		source = "document"
		tree = &figmaanalyzer.Tree{FileName: body.Document.Name, Root: body.Document}
	case body.URL != "":
		if s.fetch == nil {
			s.fail(w, source, http.StatusServiceUnavailable, "analysis by URL is not configured")
			return
		}
		tree, err = s.load(r.Context(), body.URL, body.NodeID)
		if err != nil {
			status := statusOf(err)
			s.logger.Error("Analyze: fetch failed", "url", body.URL, "node_id", body.NodeID, "error", err)
			s.fail(w, source, status, err.Error())
			return
		}
	default:
		s.fail(w, source, http.StatusBadRequest, "either url or document is required")
		return
	}

	count, err := figmaanalyzer.CheckSize(tree.Root, s.maxNodes)
	if err != nil {
		s.fail(w, source, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	s.metrics.treeNodes.Observe(float64(count))

	analysis := figmaanalyzer.Analyze(tree.Root)
	s.metrics.observe(source, analysis)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Analysis: analysis,
		FileName: tree.FileName,
		Context:  formatter.ToContext(analysis, tree.Root, nil),
	})
}

// load fetches a tree, going through the cache when enabled. Cached trees are
// never mutated: the server does not annotate assets.
func (s *Server) load(ctx context.Context, fileURL, nodeID string) (*figmaanalyzer.Tree, error) {
	var nodeIDs []string
	if nodeID != "" {
		nodeIDs = figmaanalyzer.ParseNodeIDs(nodeID)
	}

	key, err := cacheKey(fileURL, nodeIDs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if tree, ok := s.cache.Get(key); ok {
			s.metrics.cache.WithLabelValues("hit").Inc()
			return tree, nil
		}
		s.metrics.cache.WithLabelValues("miss").Inc()
	}

	tree, err := s.fetch(ctx, fileURL, nodeIDs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(key, tree)
	}
	return tree, nil
}

// cacheKey identifies a tree by file key and the effective node IDs.
func cacheKey(fileURL string, nodeIDs []string) (string, error) {
	fileKey, err := figma.ExtractFileKey(fileURL)
	if err != nil {
		return "", err
	}
	if len(nodeIDs) == 0 {
		nodeIDs, err = figma.ExtractNodeIDs(fileURL)
		if err != nil {
			return "", err
		}
	}
	return fileKey + "|" + strings.Join(nodeIDs, ","), nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, figmaanalyzer.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, figmaanalyzer.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(w http.ResponseWriter, source string, status int, msg string) {
	s.metrics.analyses.WithLabelValues(source, "error").Inc()
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
