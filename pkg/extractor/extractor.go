package extractor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kataras/figma-analyzer/pkg/components"
	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/kataras/figma-analyzer/pkg/tokens"
)

// ErrNodeNotFound is returned when none of the requested node IDs is present
// in a nodes response.
var ErrNodeNotFound = errors.New("node not found")

// Analysis is the combined output of the token extractor and the component
// classifier for one node tree.
type Analysis struct {
	DesignTokens *tokens.Set         `json:"designTokens"`
	Components   *components.Catalog `json:"components"`
}

// Analyze runs both analyzers over root. They share nothing but the read-only
// tree, so they run concurrently; the result is identical to running them one
// after the other.
func Analyze(root *figma.Node) *Analysis {
	var (
		a  Analysis
		wg sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		a.DesignTokens = tokens.Extract(root)
	}()
	go func() {
		defer wg.Done()
		a.Components = components.Detect(root)
	}()
	wg.Wait()

	return &a
}

// SelectRoot picks the tree to analyze out of a nodes response.
//
// A single found node is returned as is. Several found nodes are wrapped, in
// the order of nodeIDs, under a synthetic unnamed root that carries no paints,
// so it contributes nothing to either analysis.
func SelectRoot(resp *figma.NodesResponse, nodeIDs []string) (*figma.Node, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrNodeNotFound)
	}

	var found []figma.Node
	for _, id := range nodeIDs {
		nd, ok := resp.Nodes[id]
		if !ok || nd.Document.ID == "" && nd.Document.Type == "" {
			continue
		}
		found = append(found, nd.Document)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, nodeIDs)
	case 1:
		return &found[0], nil
	default:
		return &figma.Node{Type: "GROUP", Children: found}, nil
	}
}
