package extractor

import (
	"encoding/json"
	"testing"

	"github.com/kataras/figma-analyzer/pkg/components"
	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/kataras/figma-analyzer/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTree = `{
  "id": "1:1",
  "name": "Landing",
  "type": "FRAME",
  "layoutMode": "VERTICAL",
  "itemSpacing": 24,
  "paddingTop": 32,
  "paddingBottom": 32,
  "fills": [{"type": "SOLID", "color": {"r": 1, "g": 1, "b": 1, "a": 1}}],
  "children": [
    {
      "id": "1:2",
      "name": "Primary Button",
      "type": "FRAME",
      "cornerRadius": 8,
      "fills": [{"type": "SOLID", "color": {"r": 0, "g": 0.4, "b": 1, "a": 1}}],
      "children": [
        {
          "id": "1:3",
          "name": "Label",
          "type": "TEXT",
          "characters": "Sign up",
          "style": {"fontFamily": "Inter", "fontWeight": 600, "fontSize": 16},
          "fills": [{"type": "SOLID", "color": {"r": 1, "g": 1, "b": 1, "a": 1}}]
        }
      ]
    },
    {
      "id": "1:4",
      "name": "Icon/Arrow",
      "type": "VECTOR",
      "absoluteBoundingBox": {"x": 0, "y": 0, "width": 24, "height": 24}
    }
  ]
}`

func loadSample(t *testing.T) *figma.Node {
	t.Helper()
	var root figma.Node
	require.NoError(t, json.Unmarshal([]byte(sampleTree), &root))
	return &root
}

func TestAnalyze(t *testing.T) {
	root := loadSample(t)

	a := Analyze(root)
	require.NotNil(t, a.DesignTokens)
	require.NotNil(t, a.Components)

	assert.Equal(t, []string{"#FFFFFF", "#0066FF"}, a.DesignTokens.Colors)
	assert.Equal(t, []string{"24px", "32px"}, a.DesignTokens.SpacingScale)
	assert.Len(t, a.DesignTokens.Typography.Body, 1)
	assert.Equal(t, 1, a.Components.Summary.ButtonCount)
	assert.Equal(t, 1, a.Components.Summary.IconCount)
	assert.Equal(t, "Sign up", a.Components.Components.Buttons[0].Text)
}

func TestAnalyze_MatchesSequential(t *testing.T) {
	root := loadSample(t)
	a := Analyze(root)
	assert.Equal(t, tokens.Extract(root), a.DesignTokens)
	assert.Equal(t, components.Detect(root), a.Components)
}

func TestAnalyze_NilRoot(t *testing.T) {
	a := Analyze(nil)
	assert.Empty(t, a.DesignTokens.Colors)
	assert.Zero(t, a.Components.Summary.Total())
}

func TestAnalysis_JSONShape(t *testing.T) {
	b, err := json.Marshal(Analyze(loadSample(t)))
	require.NoError(t, err)

	var m map[string]map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m["designTokens"], "spacingScale")
	assert.Contains(t, m["components"], "summary")
	assert.Contains(t, m["components"], "components")
}

func TestSelectRoot(t *testing.T) {
	resp := &figma.NodesResponse{
		Nodes: map[string]figma.NodeData{
			"1:1": {Document: figma.Node{ID: "1:1", Type: "FRAME"}},
			"2:2": {Document: figma.Node{ID: "2:2", Type: "FRAME"}},
			"3:3": {},
		},
	}

	root, err := SelectRoot(resp, []string{"1:1"})
	require.NoError(t, err)
	assert.Equal(t, "1:1", root.ID)

	root, err = SelectRoot(resp, []string{"2:2", "3:3", "1:1"})
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "2:2", root.Children[0].ID)
	assert.Equal(t, "1:1", root.Children[1].ID)
	assert.Empty(t, root.Fills)

	_, err = SelectRoot(resp, []string{"3:3", "9:9"})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = SelectRoot(nil, []string{"1:1"})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
