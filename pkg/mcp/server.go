// Package mcp exposes the design analysis as Model Context Protocol tools,
// so that coding assistants can pull design tokens and components straight
// from a Figma URL.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	figmaanalyzer "github.com/kataras/figma-analyzer"
	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/kataras/figma-analyzer/pkg/formatter"
)

// Config configures a Server.
type Config struct {
	Fetch    figmaanalyzer.FetchFunc // required by the URL based tools
	MaxNodes int                     // 0 = figmaanalyzer.DefaultMaxNodes, negative = unlimited
	Logger   *slog.Logger            // nil = slog.Default()
}

// Server is an MCP server offering the analysis tools.
type Server struct {
	fetch     figmaanalyzer.FetchFunc
	maxNodes  int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// AnalysisResult is the payload of the analyze tools.
type AnalysisResult struct {
	FileName string `json:"fileName,omitempty"`
	*figmaanalyzer.Analysis
}

// NewServer creates the MCP server and registers its tools.
func NewServer(cfg Config) *Server {
	s := &Server{
		fetch:    cfg.Fetch,
		maxNodes: cfg.MaxNodes,
		logger:   cfg.Logger,
	}
	if s.maxNodes == 0 {
		s.maxNodes = figmaanalyzer.DefaultMaxNodes
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.mcpServer = server.NewMCPServer(
		"figma-analyzer",
		figma.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: analyzeDesignTool(), Handler: s.handleAnalyzeDesign},
		server.ServerTool{Tool: designContextTool(), Handler: s.handleDesignContext},
		server.ServerTool{Tool: analyzeDocumentTool(), Handler: s.handleAnalyzeDocument},
	)
	return s
}

// ServeStdio serves the tools on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func analyzeDesignTool() mcp.Tool {
	return mcp.NewTool("analyze_design",
		mcp.WithDescription("Extract design tokens (colors, typography, spacing, borders, effects, layout) and detect UI components (buttons, cards, navigation, forms, icons) of a Figma file or node. Returns JSON."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Figma file or design URL, optionally with a node-id query parameter")),
		mcp.WithString("node_id", mcp.Description("Comma-separated node IDs, overrides the node of the URL")),
	)
}

func designContextTool() mcp.Tool {
	return mcp.NewTool("design_context",
		mcp.WithDescription("Render the design system of a Figma file or node as a plain text context block, including a partial raw node structure, ready to be used as code generation context."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Figma file or design URL, optionally with a node-id query parameter")),
		mcp.WithString("node_id", mcp.Description("Comma-separated node IDs, overrides the node of the URL")),
	)
}

func analyzeDocumentTool() mcp.Tool {
	return mcp.NewTool("analyze_document",
		mcp.WithDescription("Analyze a Figma node tree given as JSON (a file response, a nodes response or a single node) without calling the Figma API. Returns JSON."),
		mcp.WithString("document", mcp.Required(), mcp.Description("The node tree JSON")),
	)
}

func (s *Server) handleAnalyzeDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, errResult := s.fetchTree(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return s.analysisResult(tree)
}

func (s *Server) handleDesignContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, errResult := s.fetchTree(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	if _, err := figmaanalyzer.CheckSize(tree.Root, s.maxNodes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	analysis := figmaanalyzer.Analyze(tree.Root)
	return mcp.NewToolResultText(formatter.ToContext(analysis, tree.Root, nil)), nil
}

func (s *Server) handleAnalyzeDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tree, err := figmaanalyzer.ParseTree([]byte(doc), nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.analysisResult(tree)
}

// fetchTree resolves the url and node_id arguments. A non-nil result reports
// a tool error to the client.
func (s *Server) fetchTree(ctx context.Context, req mcp.CallToolRequest) (*figmaanalyzer.Tree, *mcp.CallToolResult) {
	fileURL, err := req.RequireString("url")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	if s.fetch == nil {
		return nil, mcp.NewToolResultError("analysis by URL is not configured: set FIGMA_ACCESS_TOKEN")
	}

	var nodeIDs []string
	if raw := req.GetString("node_id", ""); raw != "" {
		nodeIDs = figmaanalyzer.ParseNodeIDs(raw)
	}

	tree, err := s.fetch(ctx, fileURL, nodeIDs)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("fetch design: %v", err))
	}
	return tree, nil
}

func (s *Server) analysisResult(tree *figmaanalyzer.Tree) (*mcp.CallToolResult, error) {
	if _, err := figmaanalyzer.CheckSize(tree.Root, s.maxNodes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := json.Marshal(AnalysisResult{
		FileName: tree.FileName,
		Analysis: figmaanalyzer.Analyze(tree.Root),
	})
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, req)

			attrs := []any{"tool", req.Params.Name, "duration", time.Since(start)}
			switch {
			case err != nil:
				s.logger.Error("Tool call failed", append(attrs, "error", err)...)
			case result != nil && result.IsError:
				s.logger.Warn("Tool call returned an error", attrs...)
			default:
				s.logger.Info("Tool call", attrs...)
			}
			return result, err
		}
	}
}
