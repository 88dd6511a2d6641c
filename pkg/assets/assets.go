// Package assets downloads rendered images for nodes with image fills and
// annotates the node tree with their local paths, so that a downstream
// consumer of the tree can reference real image files.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kataras/figma-analyzer/pkg/figma"
)

const (
	maxNodesPerRequest   = 100
	maxParallelDownloads = 5
)

// InstructionPrefix prefixes the AIInstruction annotation.
const InstructionPrefix = "USE THIS IMAGE SOURCE: "

// Renderer is the part of the Figma client used to resolve download URLs.
type Renderer interface {
	GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*figma.ImagesResponse, error)
}

// Config holds configuration for image downloads.
type Config struct {
	Format       string  // "png", "jpg", "svg" or "pdf", default "png"
	Scale        float64 // render scale, default 2; ignored for svg/pdf
	OutputDir    string  // local root directory, default "assets/images"
	PublicPrefix string  // URL prefix the files are served under, default "/assets/images"
	HTTPClient   *http.Client
}

func (c *Config) defaults() {
	if c.Format == "" {
		c.Format = "png"
	}
	switch {
	case c.Format == "svg" || c.Format == "pdf":
		c.Scale = 1
	case c.Scale <= 0:
		c.Scale = 2
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join("assets", "images")
	}
	if c.PublicPrefix == "" {
		c.PublicPrefix = "/assets/images"
	}
	c.PublicPrefix = strings.TrimRight(c.PublicPrefix, "/")
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
}

// ImageFillNode is a node that carries at least one visible IMAGE fill.
type ImageFillNode struct {
	ID       string
	Name     string
	ImageRef string // reference of the first visible image fill, may be empty
}

// Asset is a single downloaded image.
type Asset struct {
	NodeID    string
	NodeName  string
	FileName  string
	LocalPath string // path on disk
	Src       string // public path, the value written to Node.LocalSrc
}

// Result holds the outcome of a Download call.
type Result struct {
	Assets []Asset
	Errors []error // non-fatal per-image failures
}

// Sources returns node ID -> public path for every downloaded asset.
func (r *Result) Sources() map[string]string {
	m := make(map[string]string, len(r.Assets))
	for _, a := range r.Assets {
		m[a.NodeID] = a.Src
	}
	return m
}

// CollectImageFillNodes returns the nodes with a visible IMAGE fill, in
// document pre-order.
func CollectImageFillNodes(root *figma.Node) []ImageFillNode {
	var nodes []ImageFillNode
	figma.Walk(root, func(n *figma.Node) {
		for _, fill := range n.Fills {
			if fill.Type == figma.PaintImage && fill.IsVisible() {
				nodes = append(nodes, ImageFillNode{ID: n.ID, Name: n.Name, ImageRef: fill.ImageRef})
				return
			}
		}
	})
	return nodes
}

// Download renders the given nodes through the Figma images API and saves the
// results under cfg.OutputDir/<fileKey>. Node IDs are sent in batches of at
// most 100 and at most 5 files are downloaded at a time.
//
// A failed render request aborts the whole call; a failed individual download
// is recorded in Result.Errors and the rest continue.
func Download(ctx context.Context, r Renderer, fileKey string, nodes []ImageFillNode, cfg Config) (*Result, error) {
	cfg.defaults()
	result := &Result{}
	if len(nodes) == 0 {
		return result, nil
	}

	dir := filepath.Join(cfg.OutputDir, sanitize(fileKey))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	order := make(map[string]int, len(nodes))
	ids := make([]string, 0, len(nodes))
	for i, n := range nodes {
		if _, dup := order[n.ID]; dup {
			continue
		}
		order[n.ID] = i
		ids = append(ids, n.ID)
	}

	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names[n.ID] = n.Name
	}

	var mu sync.Mutex
	for i := 0; i < len(ids); i += maxNodesPerRequest {
		batch := ids[i:min(i+maxNodesPerRequest, len(ids))]

		imgResp, err := r.GetImages(ctx, fileKey, batch, cfg.Format, cfg.Scale)
		if err != nil {
			return nil, fmt.Errorf("failed to get images from Figma API: %w", err)
		}

		var g errgroup.Group
		g.SetLimit(maxParallelDownloads)

		for _, nodeID := range batch {
			imageURL := imgResp.Images[nodeID]
			if imageURL == "" {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Errorf("no image URL returned for node %s", nodeID))
				mu.Unlock()
				continue
			}

			g.Go(func() error {
				fileName := sanitize(nodeID) + "." + extensionFor(imageURL, cfg.Format)
				destPath := filepath.Join(dir, fileName)

				if err := downloadFile(ctx, cfg.HTTPClient, imageURL, destPath); err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("failed to download image for node %s: %w", nodeID, err))
					mu.Unlock()
					return nil
				}

				mu.Lock()
				result.Assets = append(result.Assets, Asset{
					NodeID:    nodeID,
					NodeName:  names[nodeID],
					FileName:  fileName,
					LocalPath: destPath,
					Src:       path.Join(cfg.PublicPrefix, sanitize(fileKey), fileName),
				})
				mu.Unlock()
				return nil
			})
		}

		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	sort.SliceStable(result.Assets, func(i, j int) bool {
		return order[result.Assets[i].NodeID] < order[result.Assets[j].NodeID]
	})

	return result, nil
}

// Annotate sets LocalSrc and AIInstruction on every node whose ID has an
// entry in sources. It returns the number of annotated nodes.
func Annotate(root *figma.Node, sources map[string]string) int {
	if len(sources) == 0 {
		return 0
	}

	count := 0
	figma.Walk(root, func(n *figma.Node) {
		src, ok := sources[n.ID]
		if !ok {
			return
		}
		n.LocalSrc = src
		n.AIInstruction = InstructionPrefix + src
		count++
	})
	return count
}

// downloadFile performs an HTTP GET and saves the response body to destPath.
func downloadFile(ctx context.Context, hc *http.Client, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", destPath, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file %q: %w", destPath, err)
	}

	return f.Close()
}

// sanitize makes a node ID or file key safe for use as a path segment.
// Node IDs look like "12:34" or "I5:6;7:8".
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}

// extensionFor returns the file extension of the download URL path, falling
// back to the requested format.
func extensionFor(rawURL, format string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return format
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	switch strings.ToLower(ext) {
	case "png", "jpg", "jpeg", "svg", "pdf", "gif", "webp":
		return strings.ToLower(ext)
	default:
		return format
	}
}
