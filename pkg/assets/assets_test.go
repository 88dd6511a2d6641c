package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/kataras/figma-analyzer/pkg/figma"
)

func TestCollectImageFillNodes(t *testing.T) {
	hidden := false

	tests := []struct {
		name    string
		root    figma.Node
		wantIDs []string
	}{
		{
			name: "no image fills",
			root: figma.Node{
				ID:   "0:1",
				Name: "Frame",
				Fills: []figma.Paint{
					{Type: "SOLID", Color: &figma.Color{R: 1, G: 0, B: 0, A: 1}},
				},
			},
		},
		{
			name: "single image fill at root",
			root: figma.Node{
				ID:   "1:1",
				Name: "Human Figure",
				Fills: []figma.Paint{
					{Type: "IMAGE", ImageRef: "abc123", ScaleMode: "FILL"},
				},
			},
			wantIDs: []string{"1:1"},
		},
		{
			name: "image fill in child node",
			root: figma.Node{
				ID:   "0:1",
				Name: "Frame",
				Children: []figma.Node{
					{ID: "2:1", Name: "Background", Fills: []figma.Paint{{Type: "SOLID"}}},
					{ID: "2:2", Name: "Photo", Fills: []figma.Paint{{Type: "IMAGE", ImageRef: "img456"}}},
				},
			},
			wantIDs: []string{"2:2"},
		},
		{
			name: "multiple image fills in nested tree, pre-order",
			root: figma.Node{
				ID:   "0:1",
				Name: "Page",
				Children: []figma.Node{
					{
						ID:   "1:1",
						Name: "Frame A",
						Children: []figma.Node{
							{ID: "3:1", Name: "Avatar", Fills: []figma.Paint{{Type: "IMAGE", ImageRef: "ref1"}}},
						},
					},
					{ID: "1:2", Name: "Frame B", Fills: []figma.Paint{{Type: "IMAGE", ImageRef: "ref2"}}},
				},
			},
			wantIDs: []string{"3:1", "1:2"},
		},
		{
			name: "hidden image fill is skipped",
			root: figma.Node{
				ID:    "1:1",
				Name:  "Hidden",
				Fills: []figma.Paint{{Type: "IMAGE", ImageRef: "x", Visible: &hidden}},
			},
		},
		{
			name: "mixed fills, node listed once",
			root: figma.Node{
				ID:   "1:1",
				Name: "Mixed",
				Fills: []figma.Paint{
					{Type: "SOLID"},
					{Type: "GRADIENT_LINEAR"},
					{Type: "IMAGE", ImageRef: "mixedRef"},
					{Type: "IMAGE", ImageRef: "second"},
				},
			},
			wantIDs: []string{"1:1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectImageFillNodes(&tt.root)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("CollectImageFillNodes() returned %d nodes, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("CollectImageFillNodes()[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		format string
		want   string
	}{
		{"png URL", "https://s3-alpha.figma.com/img/abc123/image.png", "jpg", "png"},
		{"jpg URL", "https://s3-alpha.figma.com/img/abc123/photo.JPG", "png", "jpg"},
		{"svg URL", "https://s3-alpha.figma.com/img/abc123/icon.svg", "png", "svg"},
		{"URL with query params", "https://s3-alpha.figma.com/img/abc123/image.png?X-Amz-Algorithm=AWS4-HMAC-SHA256", "svg", "png"},
		{"URL without extension uses format", "https://figma-alpha-api.s3.us-west-2.amazonaws.com/images/9f1c", "png", "png"},
		{"empty URL uses format", "", "pdf", "pdf"},
		{"invalid URL uses format", "://bad-url", "png", "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extensionFor(tt.url, tt.format); got != tt.want {
				t.Errorf("extensionFor(%q, %q) = %q, want %q", tt.url, tt.format, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"12:34":    "12-34",
		"I5:6;7:8": "I5-6-7-8",
		"abcXYZ09": "abcXYZ09",
		"":         "asset",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeRenderer struct {
	mu      sync.Mutex
	calls   [][]string
	format  string
	scale   float64
	baseURL string
	missing map[string]bool
	err     error
}

func (f *fakeRenderer) GetImages(_ context.Context, _ string, nodeIDs []string, format string, scale float64) (*figma.ImagesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, append([]string(nil), nodeIDs...))
	f.format, f.scale = format, scale

	images := make(map[string]string, len(nodeIDs))
	for _, id := range nodeIDs {
		if f.missing[id] {
			images[id] = ""
			continue
		}
		images[id] = f.baseURL + "/img/" + sanitize(id) + ".png"
	}
	return &figma.ImagesResponse{Images: images}, nil
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("PNG:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	srv := newImageServer(t)
	dir := t.TempDir()

	renderer := &fakeRenderer{baseURL: srv.URL, missing: map[string]bool{"3:3": true}}
	nodes := []ImageFillNode{
		{ID: "1:1", Name: "Hero"},
		{ID: "2:2", Name: "Avatar"},
		{ID: "3:3", Name: "Unrenderable"},
	}

	result, err := Download(context.Background(), renderer, "FILE123", nodes, Config{OutputDir: dir})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if renderer.format != "png" || renderer.scale != 2 {
		t.Errorf("render called with format=%q scale=%v, want png 2", renderer.format, renderer.scale)
	}
	if len(result.Assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(result.Assets))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}

	want := []struct{ id, src string }{
		{"1:1", "/assets/images/FILE123/1-1.png"},
		{"2:2", "/assets/images/FILE123/2-2.png"},
	}
	for i, w := range want {
		a := result.Assets[i]
		if a.NodeID != w.id || a.Src != w.src {
			t.Errorf("asset[%d] = %s %s, want %s %s", i, a.NodeID, a.Src, w.id, w.src)
		}
		data, err := os.ReadFile(filepath.Join(dir, "FILE123", a.FileName))
		if err != nil {
			t.Fatalf("asset %s not written: %v", a.NodeID, err)
		}
		if !strings.HasPrefix(string(data), "PNG:") {
			t.Errorf("asset %s content = %q", a.NodeID, data)
		}
	}

	sources := result.Sources()
	if sources["2:2"] != "/assets/images/FILE123/2-2.png" {
		t.Errorf("Sources() = %v", sources)
	}
}

func TestDownload_Batches(t *testing.T) {
	srv := newImageServer(t)
	renderer := &fakeRenderer{baseURL: srv.URL}

	nodes := make([]ImageFillNode, 0, 250)
	for i := range 250 {
		nodes = append(nodes, ImageFillNode{ID: "1:" + strconv.Itoa(i)})
	}

	result, err := Download(context.Background(), renderer, "K", nodes, Config{OutputDir: t.TempDir(), Format: "svg", Scale: 3})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if len(renderer.calls) != 3 {
		t.Fatalf("got %d render calls, want 3", len(renderer.calls))
	}
	for i, want := range []int{100, 100, 50} {
		if len(renderer.calls[i]) != want {
			t.Errorf("batch %d has %d ids, want %d", i, len(renderer.calls[i]), want)
		}
	}
	if renderer.scale != 1 {
		t.Errorf("svg scale = %v, want 1", renderer.scale)
	}
	if len(result.Assets) != 250 {
		t.Errorf("got %d assets, want 250 (errors: %v)", len(result.Assets), result.Errors)
	}
	for i := range result.Assets {
		if result.Assets[i].NodeID != nodes[i].ID {
			t.Fatalf("asset[%d] = %s, want input order %s", i, result.Assets[i].NodeID, nodes[i].ID)
		}
	}
}

func TestDownload_DownloadFailureIsNonFatal(t *testing.T) {
	srv := newImageServer(t)
	renderer := &fakeRenderer{baseURL: srv.URL + "/broken"}

	result, err := Download(context.Background(), renderer, "K", []ImageFillNode{{ID: "1:1"}}, Config{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if len(result.Assets) != 0 || len(result.Errors) != 1 {
		t.Fatalf("got %d assets, %d errors; want 0, 1", len(result.Assets), len(result.Errors))
	}
}

func TestDownload_RenderFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	renderer := &fakeRenderer{err: boom}

	_, err := Download(context.Background(), renderer, "K", []ImageFillNode{{ID: "1:1"}}, Config{OutputDir: t.TempDir()})
	if !errors.Is(err, boom) {
		t.Fatalf("Download() error = %v, want wrapping %v", err, boom)
	}
}

func TestDownload_NoNodes(t *testing.T) {
	renderer := &fakeRenderer{}
	result, err := Download(context.Background(), renderer, "K", nil, Config{OutputDir: t.TempDir()})
	if err != nil || len(result.Assets) != 0 {
		t.Fatalf("Download(nil) = %v, %v", result, err)
	}
	if len(renderer.calls) != 0 {
		t.Errorf("render API called for empty node list")
	}
}

func TestAnnotate(t *testing.T) {
	root := figma.Node{
		ID: "0:1",
		Children: []figma.Node{
			{ID: "1:1"},
			{ID: "1:2", Children: []figma.Node{{ID: "2:1"}}},
		},
	}

	n := Annotate(&root, map[string]string{
		"2:1":     "/assets/images/K/2-1.png",
		"missing": "/nowhere.png",
	})
	if n != 1 {
		t.Fatalf("Annotate() = %d, want 1", n)
	}

	got := root.Children[1].Children[0]
	if got.LocalSrc != "/assets/images/K/2-1.png" {
		t.Errorf("LocalSrc = %q", got.LocalSrc)
	}
	if got.AIInstruction != "USE THIS IMAGE SOURCE: /assets/images/K/2-1.png" {
		t.Errorf("AIInstruction = %q", got.AIInstruction)
	}
	if root.Children[0].LocalSrc != "" || root.LocalSrc != "" {
		t.Errorf("unrelated nodes were annotated")
	}
}
