package figmaanalyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kataras/figma-analyzer/pkg/assets"
	"github.com/kataras/figma-analyzer/pkg/extractor"
	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/kataras/figma-analyzer/pkg/formatter"
)

// DefaultMaxNodes is the node budget applied when Options.MaxNodes is zero.
const DefaultMaxNodes = 250_000

var (
	// ErrTreeTooLarge is returned when a node tree exceeds the node budget.
	ErrTreeTooLarge = errors.New("node tree too large")
	// ErrNodeNotFound is returned when none of the requested nodes exist.
	ErrNodeNotFound = extractor.ErrNodeNotFound
	// ErrInvalidURL is returned for URLs that do not point at a Figma file.
	ErrInvalidURL = figma.ErrInvalidURL
	// ErrNoSource is returned when neither a file URL nor a tree file is given.
	ErrNoSource = errors.New("either a Figma URL or a tree file is required")
)

// Analysis is the combined token and component analysis of a node tree.
type Analysis = extractor.Analysis

// Options configures the analysis.
type Options struct {
	AccessToken string
	FileURL     string   // Figma file URL
	NodeIDs     []string // empty = node IDs of the URL, or the entire file
	TreeFile    string   // analyze a node tree saved as JSON instead of calling the API
	MaxNodes    int      // 0 = DefaultMaxNodes, negative = unlimited

	DownloadAssets bool
	Assets         assets.Config

	ClientOptions []figma.ClientOption
	Logger        Logger // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Tree is a node tree ready to be analyzed.
type Tree struct {
	FileKey  string // empty for trees loaded from disk
	FileName string
	Root     *figma.Node
}

// Result contains the analysis output.
type Result struct {
	Tree     *Tree
	Analysis *Analysis
	Assets   []assets.Asset // downloaded image assets, if any
	Context  string         // design context for a generative backend
	Markdown string         // formatted markdown report
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

// Analyze runs the token extractor and the component classifier over root.
func Analyze(root *figma.Node) *Analysis {
	return extractor.Analyze(root)
}

// Run executes the analysis pipeline and returns the result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.MaxNodes == 0 {
		opts.MaxNodes = DefaultMaxNodes
	}

	var (
		tree   *Tree
		client *figma.Client
		err    error
	)

	switch {
	case opts.TreeFile != "":
		opts.logInfo("Loading node tree from %s...", opts.TreeFile)
		tree, err = LoadTree(opts.TreeFile, opts.NodeIDs)
		if err != nil {
			return nil, err
		}
		if opts.FileURL != "" {
			if key, err := figma.ExtractFileKey(opts.FileURL); err == nil {
				tree.FileKey = key
			}
		}
	case opts.FileURL != "":
		opts.logInfo("Authenticating with Figma API...")
		client = figma.NewClient(opts.AccessToken, opts.ClientOptions...)
		tree, err = fetchTree(ctx, client, opts.FileURL, opts.NodeIDs, &opts)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoSource
	}

	count, err := CheckSize(tree.Root, opts.MaxNodes)
	if err != nil {
		return nil, err
	}
	opts.logInfo("Analyzing %d node(s)...", count)

	analysis := Analyze(tree.Root)
	summary := analysis.Components.Summary
	opts.logInfo("Found %d color(s), %d font style(s), %d component(s)",
		len(analysis.DesignTokens.Colors), len(analysis.DesignTokens.Fonts), summary.Total())

	result := &Result{Tree: tree, Analysis: analysis}

	if opts.DownloadAssets {
		if client == nil && tree.FileKey != "" && opts.AccessToken != "" {
			client = figma.NewClient(opts.AccessToken, opts.ClientOptions...)
		}
		if client == nil || tree.FileKey == "" {
			opts.logWarn("Skipping asset download: a Figma URL and access token are required")
		} else {
			result.Assets = downloadAssets(ctx, client, tree, &opts)
		}
	}

	opts.logInfo("Generating design context and markdown report...")
	result.Context = formatter.ToContext(analysis, tree.Root, result.Assets)
	result.Markdown = formatter.ToMarkdown(analysis, tree.FileName, result.Assets)

	return result, nil
}

// downloadAssets fetches the images of nodes with image fills and annotates
// the tree with their local paths. Failures are logged and never abort the run.
func downloadAssets(ctx context.Context, client *figma.Client, tree *Tree, opts *Options) []assets.Asset {
	nodes := assets.CollectImageFillNodes(tree.Root)
	if len(nodes) == 0 {
		opts.logInfo("No image nodes found to download")
		return nil
	}

	opts.logInfo("Found %d image node(s), downloading to %s...", len(nodes), opts.Assets.OutputDir)
	res, err := assets.Download(ctx, client, tree.FileKey, nodes, opts.Assets)
	if err != nil {
		opts.logWarn("Asset download failed: %v", err)
		if res == nil {
			return nil
		}
	}
	for _, dlErr := range res.Errors {
		opts.logWarn("%v", dlErr)
	}

	n := assets.Annotate(tree.Root, res.Sources())
	opts.logInfo("Downloaded %d image(s), annotated %d node(s)", len(res.Assets), n)
	return res.Assets
}

// FetchTree resolves the file key and node IDs of fileURL and fetches the
// node tree from the Figma API. Explicit nodeIDs take precedence over the ones
// in the URL; with neither, the whole document is fetched.
func FetchTree(ctx context.Context, client *figma.Client, fileURL string, nodeIDs []string) (*Tree, error) {
	return fetchTree(ctx, client, fileURL, nodeIDs, &Options{})
}

func fetchTree(ctx context.Context, client *figma.Client, fileURL string, nodeIDs []string, opts *Options) (*Tree, error) {
	opts.logInfo("Extracting file key from URL...")
	fileKey, err := figma.ExtractFileKey(fileURL)
	if err != nil {
		return nil, fmt.Errorf("extract file key: %w", err)
	}
	opts.logInfo("File key: %s", fileKey)

	targetNodeIDs := nodeIDs
	if len(targetNodeIDs) == 0 {
		targetNodeIDs, err = figma.ExtractNodeIDs(fileURL)
		if err != nil {
			return nil, fmt.Errorf("extract node IDs from URL: %w", err)
		}
	}

	if len(targetNodeIDs) == 0 {
		opts.logInfo("No node IDs found, fetching entire file...")
		fileResp, err := client.GetFile(ctx, fileKey)
		if err != nil {
			return nil, fmt.Errorf("fetch file: %w", err)
		}
		opts.logInfo("File: %s", fileResp.Name)
		return &Tree{FileKey: fileKey, FileName: fileResp.Name, Root: &fileResp.Document}, nil
	}

	opts.logInfo("Fetching %d node(s) from Figma...", len(targetNodeIDs))
	nodesResp, err := client.GetFileNodes(ctx, fileKey, targetNodeIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch nodes: %w", err)
	}

	root, err := extractor.SelectRoot(nodesResp, targetNodeIDs)
	if err != nil {
		return nil, err
	}
	opts.logInfo("File: %s", nodesResp.Name)

	return &Tree{FileKey: fileKey, FileName: nodesResp.Name, Root: root}, nil
}

// FetchFunc loads the node tree referenced by a Figma URL.
type FetchFunc func(ctx context.Context, fileURL string, nodeIDs []string) (*Tree, error)

// ClientFetcher returns a FetchFunc backed by client.
func ClientFetcher(client *figma.Client) FetchFunc {
	return func(ctx context.Context, fileURL string, nodeIDs []string) (*Tree, error) {
		return FetchTree(ctx, client, fileURL, nodeIDs)
	}
}

// LoadTree reads a node tree saved as JSON. The file may hold a bare node, a
// files API response ({"document": ...}) or a nodes API response
// ({"nodes": {...}}); for the latter, nodeIDs selects the nodes to analyze and
// defaults to all of them.
func LoadTree(path string, nodeIDs []string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree file: %w", err)
	}

	tree, err := ParseTree(data, nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// ParseTree decodes a node tree, see LoadTree for the accepted shapes.
func ParseTree(data []byte, nodeIDs []string) (*Tree, error) {
	var envelope struct {
		Name     string                    `json:"name"`
		Document *figma.Node               `json:"document"`
		Nodes    map[string]figma.NodeData `json:"nodes"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}

	switch {
	case envelope.Document != nil:
		return &Tree{FileName: envelope.Name, Root: envelope.Document}, nil
	case len(envelope.Nodes) > 0:
		ids := nodeIDs
		if len(ids) == 0 {
			for id := range envelope.Nodes {
				ids = append(ids, id)
			}
			sort.Strings(ids)
		}
		root, err := extractor.SelectRoot(&figma.NodesResponse{Name: envelope.Name, Nodes: envelope.Nodes}, ids)
		if err != nil {
			return nil, err
		}
		return &Tree{FileName: envelope.Name, Root: root}, nil
	}

	var root figma.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	return &Tree{FileName: root.Name, Root: &root}, nil
}

// CheckSize counts the nodes of root and fails with ErrTreeTooLarge when
// there are more than limit. A negative limit disables the check.
func CheckSize(root *figma.Node, limit int) (int, error) {
	count := figma.CountNodes(root)
	if limit >= 0 && count > limit {
		return count, fmt.Errorf("%w: %d nodes, limit is %d", ErrTreeTooLarge, count, limit)
	}
	return count, nil
}

// ParseNodeIDs parses a comma-separated string of node IDs and returns a slice.
// URL-style IDs ("12-34") are converted to API form ("12:34").
func ParseNodeIDs(nodeIDsStr string) []string {
	parts := strings.Split(nodeIDsStr, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if !strings.Contains(trimmed, ":") {
			trimmed = strings.ReplaceAll(trimmed, "-", ":")
		}
		result = append(result, trimmed)
	}

	return result
}
