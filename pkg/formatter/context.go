package formatter

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kataras/figma-analyzer/pkg/assets"
	"github.com/kataras/figma-analyzer/pkg/extractor"
	"github.com/kataras/figma-analyzer/pkg/figma"
)

// NodeStructureLimit caps the size, in bytes, of the raw node structure
// embedded in the design context.
const NodeStructureLimit = 5000

// ToContext renders the analysis as the plain-text design context handed to a
// generative backend. root is the (possibly annotated) analyzed tree and images
// lists the downloaded assets, in the order they should be presented.
func ToContext(a *extractor.Analysis, root *figma.Node, images []assets.Asset) string {
	var sb strings.Builder
	t := a.DesignTokens
	s := a.Components.Summary

	sb.WriteString("**EXTRACTED DESIGN SYSTEM (FROM FIGMA API):**\n")
	fmt.Fprintf(&sb, "- **COLORS:** %s\n", strings.Join(t.Colors, ", "))
	fmt.Fprintf(&sb, "- **GRADIENTS:** %s\n", joinOr(t.Gradients, "None"))
	sb.WriteString("- **TYPOGRAPHY:**\n")
	fmt.Fprintf(&sb, "  - Headings: %d styles\n", len(t.Typography.Headings))
	fmt.Fprintf(&sb, "  - Body: %d styles\n", len(t.Typography.Body))
	fmt.Fprintf(&sb, "  - Captions: %d styles\n", len(t.Typography.Captions))
	fmt.Fprintf(&sb, "- **SPACING SCALE:** %s\n", joinOr(t.SpacingScale, "Not detected"))
	sb.WriteString("- **BORDERS:**\n")
	fmt.Fprintf(&sb, "  - Radius: %s\n", joinOr(t.Borders.Radius, "None"))
	fmt.Fprintf(&sb, "  - Widths: %s\n", joinOr(t.Borders.Widths, "None"))
	sb.WriteString("- **EFFECTS:**\n")
	fmt.Fprintf(&sb, "  - Shadows: %d detected\n", len(t.Effects.Shadows))
	fmt.Fprintf(&sb, "  - Blurs: %d detected\n", len(t.Effects.Blurs))
	sb.WriteString("- **LAYOUT:**\n")
	fmt.Fprintf(&sb, "  - Gaps: %s\n", strings.Join(t.Layout.Gaps, ", "))
	fmt.Fprintf(&sb, "  - Paddings: %s\n", strings.Join(t.Layout.Paddings, ", "))

	sb.WriteString("\n**DETECTED COMPONENTS:**\n")
	fmt.Fprintf(&sb, "- Buttons: %d\n", s.ButtonCount)
	fmt.Fprintf(&sb, "- Cards: %d\n", s.CardCount)
	fmt.Fprintf(&sb, "- Navigation: %d\n", s.NavigationCount)
	fmt.Fprintf(&sb, "- Forms: %d\n", s.FormCount)
	fmt.Fprintf(&sb, "- Icons: %d\n", s.IconCount)

	sb.WriteString("\n**AVAILABLE LOCAL IMAGE ASSETS:**\n")
	if len(images) == 0 {
		sb.WriteString("None downloaded\n")
	}
	for _, img := range images {
		fmt.Fprintf(&sb, "- Node %s: %s\n", img.NodeID, img.Src)
	}

	sb.WriteString("\n**INSTRUCTION FOR IMAGES:**\n")
	sb.WriteString("The raw node structure below contains \"localSrc\" and \"AI_INSTRUCTION\" fields for image nodes.\n")
	sb.WriteString("YOU MUST USE THESE VALUES for the `src` attribute of <img> tags.\n")
	sb.WriteString("DO NOT use placeholders if a \"localSrc\" is available.\n")

	sb.WriteString("\n**RAW NODE STRUCTURE (Partial):**\n")
	sb.WriteString(PruneNode(root, NodeStructureLimit))
	sb.WriteString("\n")

	return sb.String()
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

// prunedNode keeps only the node properties that help a generative backend
// reproduce the design.
type prunedNode struct {
	ID              string           `json:"id,omitempty"`
	Name            string           `json:"name,omitempty"`
	Type            string           `json:"type,omitempty"`
	Characters      string           `json:"characters,omitempty"`
	Style           *figma.TypeStyle `json:"style,omitempty"`
	BackgroundColor *figma.Color     `json:"backgroundColor,omitempty"`
	Fills           []figma.Paint    `json:"fills,omitempty"`
	Strokes         []figma.Paint    `json:"strokes,omitempty"`
	LayoutMode      string           `json:"layoutMode,omitempty"`
	ItemSpacing     float64          `json:"itemSpacing,omitempty"`
	PaddingLeft     float64          `json:"paddingLeft,omitempty"`
	PaddingRight    float64          `json:"paddingRight,omitempty"`
	PaddingTop      float64          `json:"paddingTop,omitempty"`
	PaddingBottom   float64          `json:"paddingBottom,omitempty"`
	LocalSrc        string           `json:"localSrc,omitempty"`
	AIInstruction   string           `json:"AI_INSTRUCTION,omitempty"`
	Children        []*prunedNode    `json:"children,omitempty"`
}

func prune(n *figma.Node) *prunedNode {
	p := &prunedNode{
		ID:              n.ID,
		Name:            n.Name,
		Type:            n.Type,
		Characters:      n.Characters,
		Style:           n.Style,
		BackgroundColor: n.CanvasBackground,
		Fills:           n.Fills,
		Strokes:         n.Strokes,
		LayoutMode:      n.LayoutMode,
		ItemSpacing:     n.ItemSpacing,
		PaddingLeft:     n.PaddingLeft,
		PaddingRight:    n.PaddingRight,
		PaddingTop:      n.PaddingTop,
		PaddingBottom:   n.PaddingBottom,
		LocalSrc:        n.LocalSrc,
		AIInstruction:   n.AIInstruction,
	}
	for i := range n.Children {
		p.Children = append(p.Children, prune(&n.Children[i]))
	}
	return p
}

// PruneNode renders root as indented JSON restricted to the properties a
// generative backend needs, truncated to at most limit bytes on a UTF-8
// boundary. A non-positive limit disables truncation.
func PruneNode(root *figma.Node, limit int) string {
	if root == nil {
		return "null"
	}

	b, err := json.MarshalIndent(prune(root), "", "  ")
	if err != nil {
		return "null"
	}

	return truncate(string(b), limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	s = s[:limit]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
