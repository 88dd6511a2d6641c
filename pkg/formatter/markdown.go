package formatter

import (
	"fmt"
	"strings"

	"github.com/kataras/figma-analyzer/pkg/assets"
	"github.com/kataras/figma-analyzer/pkg/components"
	"github.com/kataras/figma-analyzer/pkg/extractor"
)

// maxPreviews is the number of records listed per component kind.
const maxPreviews = 3

// ToMarkdown transforms an analysis into a markdown report.
// The output includes CSS variable definitions for colors, spacing, radii and
// shadows, the typography buckets, the detected components and the downloaded
// image assets.
func ToMarkdown(a *extractor.Analysis, fileName string, images []assets.Asset) string {
	var sb strings.Builder
	t := a.DesignTokens

	if fileName == "" {
		fileName = "Untitled"
	}
	sb.WriteString(fmt.Sprintf("# Figma Design Analysis - %s\n\n", fileName))
	sb.WriteString("This document contains the design tokens and UI components detected in the Figma design.\n\n")

	// Colors
	sb.WriteString("## Design Tokens\n\n")
	sb.WriteString("### Color Palette\n\n")
	sb.WriteString("```css\n")
	for i, color := range t.Colors {
		sb.WriteString(fmt.Sprintf("--color-%d: %s;\n", i+1, color))
	}
	if len(t.Gradients) > 0 {
		sb.WriteString("\n/* Gradients */\n")
		for i, g := range t.Gradients {
			sb.WriteString(fmt.Sprintf("/* --gradient-%d: %s */\n", i+1, g))
		}
	}
	sb.WriteString("```\n\n")

	// Typography
	sb.WriteString("### Typography\n\n")
	if len(t.Fonts) == 0 {
		sb.WriteString("No text styles detected.\n\n")
	}
	writeList(&sb, "Headings", t.Typography.Headings)
	writeList(&sb, "Body", t.Typography.Body)
	writeList(&sb, "Captions", t.Typography.Captions)

	// Spacing
	if len(t.SpacingScale) > 0 {
		sb.WriteString("### Spacing\n\n")
		sb.WriteString("```css\n")
		sb.WriteString("/* Spacing Scale */\n")
		for i, value := range t.SpacingScale {
			sb.WriteString(fmt.Sprintf("--space-%d: %s;\n", i+1, value))
		}
		sb.WriteString("```\n\n")
	}

	// Border Radii
	if len(t.Borders.Radius) > 0 || len(t.Borders.Widths) > 0 {
		sb.WriteString("### Borders\n\n")
		sb.WriteString("```css\n")
		for i, radius := range t.Borders.Radius {
			sb.WriteString(fmt.Sprintf("--radius-%d: %s;\n", i+1, radius))
		}
		for i, width := range t.Borders.Widths {
			sb.WriteString(fmt.Sprintf("--border-width-%d: %s;\n", i+1, width))
		}
		sb.WriteString("```\n\n")
	}

	// Shadows
	if len(t.Effects.Shadows) > 0 || len(t.Effects.Blurs) > 0 {
		sb.WriteString("### Effects\n\n")
		sb.WriteString("```css\n")
		for i, shadow := range t.Effects.Shadows {
			sb.WriteString(fmt.Sprintf("--shadow-%d: %s;\n", i+1, shadow))
		}
		for i, blur := range t.Effects.Blurs {
			sb.WriteString(fmt.Sprintf("--blur-%d: %s;\n", i+1, blur))
		}
		sb.WriteString("```\n\n")
	}

	// Layout
	if len(t.Layout.Gaps) > 0 || len(t.Layout.Paddings) > 0 {
		sb.WriteString("### Layout\n\n")
		if len(t.Layout.Gaps) > 0 {
			sb.WriteString(fmt.Sprintf("- **Gaps**: %s\n", strings.Join(t.Layout.Gaps, ", ")))
		}
		if len(t.Layout.Paddings) > 0 {
			sb.WriteString(fmt.Sprintf("- **Paddings**: %s\n", strings.Join(t.Layout.Paddings, ", ")))
		}
		sb.WriteString("\n")
	}

	writeComponents(&sb, a.Components)

	// Image Assets
	if len(images) > 0 {
		sb.WriteString("## Image Assets\n\n")
		sb.WriteString("| Node | Name | Source |\n")
		sb.WriteString("|------|------|--------|\n")
		for _, img := range images {
			name := img.NodeName
			if name == "" {
				name = img.FileName
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | `%s` |\n", img.NodeID, escapeCell(name), img.Src))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeComponents(sb *strings.Builder, c *components.Catalog) {
	s := c.Summary

	sb.WriteString("## Components\n\n")
	sb.WriteString("| Kind | Count |\n")
	sb.WriteString("|------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Buttons | %d |\n", s.ButtonCount))
	sb.WriteString(fmt.Sprintf("| Cards | %d |\n", s.CardCount))
	sb.WriteString(fmt.Sprintf("| Navigation | %d |\n", s.NavigationCount))
	sb.WriteString(fmt.Sprintf("| Forms | %d |\n", s.FormCount))
	sb.WriteString(fmt.Sprintf("| Icons | %d |\n", s.IconCount))
	sb.WriteString("\n")

	if s.ButtonCount > 0 {
		sb.WriteString("### Buttons\n\n")
		for _, b := range head(c.Components.Buttons) {
			sb.WriteString(fmt.Sprintf("- `%s` %s \"%s\" (bg %s, text %s, radius %gpx, %gx%g)\n",
				b.NodeID, b.Variant, b.Text, orNone(b.Properties.BgColor), orNone(b.Properties.TextColor),
				b.Properties.BorderRadius, b.Properties.Width, b.Properties.Height))
		}
		sb.WriteString("\n")
	}

	if s.CardCount > 0 {
		sb.WriteString("### Cards\n\n")
		for _, card := range head(c.Components.Cards) {
			sb.WriteString(fmt.Sprintf("- `%s` %s (image: %t, text: %t, button: %t, bg %s)\n",
				card.NodeID, card.Variant, card.HasImage, card.HasText, card.HasButton, orNone(card.Properties.BgColor)))
		}
		sb.WriteString("\n")
	}

	if s.NavigationCount > 0 {
		sb.WriteString("### Navigation\n\n")
		for _, nav := range head(c.Components.Navigation) {
			sb.WriteString(fmt.Sprintf("- `%s` %s with %d links (gap %gpx, bg %s)\n",
				nav.NodeID, nav.Variant, nav.LinkCount, nav.Properties.Gap, orNone(nav.Properties.BgColor)))
		}
		sb.WriteString("\n")
	}

	if s.FormCount > 0 {
		sb.WriteString("### Forms\n\n")
		for _, f := range head(c.Components.Forms) {
			sb.WriteString(fmt.Sprintf("- `%s` %s (%gx%g)\n", f.NodeID, f.ElementType, f.Properties.Width, f.Properties.Height))
		}
		sb.WriteString("\n")
	}

	if s.IconCount > 0 {
		sb.WriteString("### Icons\n\n")
		for _, icon := range head(c.Components.Icons) {
			sb.WriteString(fmt.Sprintf("- `%s` %s (%gpx, %s)\n", icon.NodeID, icon.Name, icon.Size, orNone(icon.Color)))
		}
		sb.WriteString("\n")
	}
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("**%s**\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}

func head[T any](items []T) []T {
	if len(items) > maxPreviews {
		return items[:maxPreviews]
	}
	return items
}

func orNone(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}

// escapeCell makes a node name safe to place inside a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
