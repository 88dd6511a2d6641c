// Package tokens derives a deduplicated design-token inventory (colors,
// gradients, typography, spacing, radii, borders and effects) from a Figma
// node tree in a single pre-order pass.
package tokens

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kataras/figma-analyzer/pkg/figma"
)

// Font size thresholds for typography buckets.
const (
	HeadingMinSize = 32
	BodyMinSize    = 14
)

// GradientSeparator joins the stop colors of a gradient descriptor.
const GradientSeparator = " → "

// Set is the token inventory of a design tree.
// Every list is deduplicated by exact string equality and kept in first-seen order,
// except SpacingScale which is sorted numerically.
type Set struct {
	Colors       []string   `json:"colors"`
	Gradients    []string   `json:"gradients"`
	Fonts        []string   `json:"fonts"`
	Typography   Typography `json:"typography"`
	Layout       Layout     `json:"layout"`
	Effects      Effects    `json:"effects"`
	Borders      Borders    `json:"borders"`
	SpacingScale []string   `json:"spacingScale"`
}

// Typography buckets font descriptors by size.
type Typography struct {
	Headings []string `json:"headings"`
	Body     []string `json:"body"`
	Captions []string `json:"captions"`
}

// Layout holds auto-layout gaps and CSS-shorthand paddings.
type Layout struct {
	Gaps     []string `json:"gaps"`
	Paddings []string `json:"paddings"`
}

// Effects holds shadow and blur descriptors.
type Effects struct {
	Shadows []string `json:"shadows"`
	Blurs   []string `json:"blurs"`
}

// Borders holds corner radii and stroke widths.
type Borders struct {
	Radius []string `json:"radius"`
	Widths []string `json:"widths"`
}

// accumulator collects tokens for one Extract call.
type accumulator struct {
	colors    stringSet
	gradients stringSet
	fonts     stringSet
	headings  stringSet
	body      stringSet
	captions  stringSet
	gaps      stringSet
	paddings  stringSet
	shadows   stringSet
	blurs     stringSet
	radius    stringSet
	widths    stringSet
	spacing   map[float64]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		colors:    newStringSet(),
		gradients: newStringSet(),
		fonts:     newStringSet(),
		headings:  newStringSet(),
		body:      newStringSet(),
		captions:  newStringSet(),
		gaps:      newStringSet(),
		paddings:  newStringSet(),
		shadows:   newStringSet(),
		blurs:     newStringSet(),
		radius:    newStringSet(),
		widths:    newStringSet(),
		spacing:   make(map[float64]struct{}),
	}
}

// Extract walks the tree rooted at root and returns its token inventory.
// It never fails: absent fields contribute nothing. A nil root yields an empty Set.
func Extract(root *figma.Node) *Set {
	acc := newAccumulator()
	figma.Walk(root, acc.visit)
	return acc.materialize()
}

func (acc *accumulator) visit(n *figma.Node) {
	acc.fills(n)
	acc.strokes(n)
	acc.typography(n)
	acc.layout(n)
	acc.corners(n)
	acc.effects(n)
}

func (acc *accumulator) fills(n *figma.Node) {
	for _, fill := range n.Fills {
		if !fill.IsVisible() {
			continue
		}
		switch fill.Type {
		case figma.PaintSolid:
			if fill.Color != nil {
				acc.colors.add(figma.Hex(fill.Color))
			}
		case figma.PaintGradientLinear, figma.PaintGradientRadial:
			if g := gradient(fill.GradientStops); g != "" {
				acc.gradients.add(g)
			}
		}
	}
}

func gradient(stops []figma.GradientStop) string {
	if len(stops) == 0 {
		return ""
	}
	hexes := make([]string, len(stops))
	for i, stop := range stops {
		hexes[i] = figma.Hex(stop.Color)
	}
	return strings.Join(hexes, GradientSeparator)
}

func (acc *accumulator) strokes(n *figma.Node) {
	for _, stroke := range n.Strokes {
		if stroke.Type == figma.PaintSolid && stroke.Color != nil && stroke.IsVisible() {
			acc.colors.add(figma.Hex(stroke.Color))
		}
	}
	if n.StrokeWeight != 0 {
		acc.widths.add(figma.Px(n.StrokeWeight))
	}
}

func (acc *accumulator) typography(n *figma.Node) {
	if n.Style == nil {
		return
	}
	desc := FontDescriptor(n.Style)
	acc.fonts.add(desc)

	switch size := n.Style.FontSize; {
	case size >= HeadingMinSize:
		acc.headings.add(desc)
	case size >= BodyMinSize:
		acc.body.add(desc)
	default:
		acc.captions.add(desc)
	}
}

// FontDescriptor renders a text style as a single descriptor string.
// Weight defaults to 400, line height to "Auto", letter spacing to "0px" and
// alignment to "left".
func FontDescriptor(s *figma.TypeStyle) string {
	weight := s.FontWeight
	if weight == 0 {
		weight = 400
	}

	lineHeight := "Auto"
	if s.LineHeightPx != 0 {
		lineHeight = fmt.Sprintf("%.0fpx", roundHalfUp(s.LineHeightPx))
	}

	letterSpacing := "0px"
	if s.LetterSpacing != 0 {
		letterSpacing = fmt.Sprintf("%.2fpx", s.LetterSpacing)
	}

	align := "left"
	if s.TextAlignHorizontal != "" {
		align = strings.ToLower(s.TextAlignHorizontal)
	}

	return fmt.Sprintf("Family: %s, Weight: %s, Size: %s, LineHeight: %s, LetterSpacing: %s, Align: %s",
		s.FontFamily, trimFloat(weight), figma.Px(s.FontSize), lineHeight, letterSpacing, align)
}

func (acc *accumulator) layout(n *figma.Node) {
	if !n.IsAutoLayout() {
		return
	}

	if n.ItemSpacing != 0 {
		acc.gaps.add(figma.Px(n.ItemSpacing))
		acc.spacing[n.ItemSpacing] = struct{}{}
	}

	p := n.Padding()
	if p == nil {
		return
	}
	acc.paddings.add(p.String())
	for _, v := range []float64{p.Top, p.Right, p.Bottom, p.Left} {
		if v > 0 {
			acc.spacing[v] = struct{}{}
		}
	}
}

func (acc *accumulator) corners(n *figma.Node) {
	if n.CornerRadius != nil {
		acc.radius.add(figma.Px(*n.CornerRadius))
		return
	}
	for _, r := range n.RectangleCornerRadii {
		if r > 0 {
			acc.radius.add(figma.Px(r))
		}
	}
}

func (acc *accumulator) effects(n *figma.Node) {
	for _, effect := range n.Effects {
		if !effect.IsVisible() {
			continue
		}
		switch effect.Type {
		case "DROP_SHADOW", "INNER_SHADOW":
			acc.shadows.add(Shadow(effect))
		case "LAYER_BLUR", "BACKGROUND_BLUR":
			acc.blurs.add(figma.Px(effect.Radius))
		}
	}
}

// Shadow renders a shadow effect as "<x>px <y>px <radius>px <hex>".
func Shadow(e figma.Effect) string {
	var x, y float64
	if e.Offset != nil {
		x, y = e.Offset.X, e.Offset.Y
	}
	return fmt.Sprintf("%s %s %s %s", figma.Px(x), figma.Px(y), figma.Px(e.Radius), figma.Hex(e.Color))
}

func (acc *accumulator) materialize() *Set {
	return &Set{
		Colors:    acc.colors.slice(),
		Gradients: acc.gradients.slice(),
		Fonts:     acc.fonts.slice(),
		Typography: Typography{
			Headings: acc.headings.slice(),
			Body:     acc.body.slice(),
			Captions: acc.captions.slice(),
		},
		Layout: Layout{
			Gaps:     acc.gaps.slice(),
			Paddings: acc.paddings.slice(),
		},
		Effects: Effects{
			Shadows: acc.shadows.slice(),
			Blurs:   acc.blurs.slice(),
		},
		Borders: Borders{
			Radius: acc.radius.slice(),
			Widths: acc.widths.slice(),
		},
		SpacingScale: spacingScale(acc.spacing),
	}
}

func spacingScale(values map[float64]struct{}) []string {
	sorted := make([]float64, 0, len(values))
	for v := range values {
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)

	scale := make([]string, len(sorted))
	for i, v := range sorted {
		scale[i] = figma.Px(v)
	}
	return scale
}
