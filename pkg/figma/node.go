package figma

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Node types the analyzers care about. Any other type is treated as KindOther
// unless it has children.
const (
	TypeText            = "TEXT"
	TypeVector          = "VECTOR"
	TypeBooleanOp       = "BOOLEAN_OPERATION"
	TypeRectangle       = "RECTANGLE"
	PaintSolid          = "SOLID"
	PaintGradientLinear = "GRADIENT_LINEAR"
	PaintGradientRadial = "GRADIENT_RADIAL"
	PaintImage          = "IMAGE"
	LayoutHorizontal    = "HORIZONTAL"
	LayoutVertical      = "VERTICAL"
	LayoutNone          = "NONE"
)

// Kind is the coarse variant of a node, derived from its type and shape.
type Kind int

const (
	KindOther Kind = iota
	KindContainer
	KindText
	KindVector
	KindRectangle
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindText:
		return "text"
	case KindVector:
		return "vector"
	case KindRectangle:
		return "rectangle"
	default:
		return "other"
	}
}

// Kind classifies the node. Leaf types win over containment, so a TEXT node
// that (unusually) carries children is still KindText.
func (n *Node) Kind() Kind {
	switch n.Type {
	case TypeText:
		return KindText
	case TypeVector, TypeBooleanOp:
		return KindVector
	case TypeRectangle:
		return KindRectangle
	}
	if len(n.Children) > 0 {
		return KindContainer
	}
	return KindOther
}

// IsText reports whether the node is a text run.
func (n *Node) IsText() bool { return n.Kind() == KindText }

// IsVectorLike reports whether the node is a VECTOR or BOOLEAN_OPERATION.
func (n *Node) IsVectorLike() bool { return n.Kind() == KindVector }

// HasChildren reports whether the node is an interior node.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// HasTextChild reports whether any direct child is a TEXT node.
func (n *Node) HasTextChild() bool {
	for i := range n.Children {
		if n.Children[i].IsText() {
			return true
		}
	}
	return false
}

// FirstTextChild returns the first direct TEXT child, or nil.
func (n *Node) FirstTextChild() *Node {
	for i := range n.Children {
		if n.Children[i].IsText() {
			return &n.Children[i]
		}
	}
	return nil
}

// IsTextBearing reports whether the node is TEXT or has a direct TEXT child.
func (n *Node) IsTextBearing() bool {
	return n.IsText() || n.HasTextChild()
}

// HasVisibleFill reports whether any fill, of any kind, is visible.
func (n *Node) HasVisibleFill() bool {
	for _, fill := range n.Fills {
		if fill.IsVisible() {
			return true
		}
	}
	return false
}

// VisibleSolidFill returns the first visible SOLID fill, or nil.
func (n *Node) VisibleSolidFill() *Paint {
	for i := range n.Fills {
		if n.Fills[i].Type == PaintSolid && n.Fills[i].IsVisible() {
			return &n.Fills[i]
		}
	}
	return nil
}

// HasVisibleSolidFill reports whether the node has a visible SOLID fill.
func (n *Node) HasVisibleSolidFill() bool { return n.VisibleSolidFill() != nil }

// HasImageFill reports whether any fill is an IMAGE paint, visible or not.
func (n *Node) HasImageFill() bool {
	for _, fill := range n.Fills {
		if fill.Type == PaintImage {
			return true
		}
	}
	return false
}

// HasVisibleImageFill reports whether the node has a visible IMAGE fill.
func (n *Node) HasVisibleImageFill() bool {
	for _, fill := range n.Fills {
		if fill.Type == PaintImage && fill.IsVisible() {
			return true
		}
	}
	return false
}

// HasStroke reports whether the node declares any stroke paint.
func (n *Node) HasStroke() bool { return len(n.Strokes) > 0 }

// HasCornerRadius reports whether a uniform or per-corner radius is set.
func (n *Node) HasCornerRadius() bool {
	return n.CornerRadius != nil || len(n.RectangleCornerRadii) > 0
}

// Radius returns the uniform corner radius, or 0 when unset.
func (n *Node) Radius() float64 {
	if n.CornerRadius == nil {
		return 0
	}
	return *n.CornerRadius
}

// Width returns the bounding box width, or 0 when unknown.
func (n *Node) Width() float64 {
	if n.AbsoluteBoundingBox == nil {
		return 0
	}
	return n.AbsoluteBoundingBox.Width
}

// Height returns the bounding box height, or 0 when unknown.
func (n *Node) Height() float64 {
	if n.AbsoluteBoundingBox == nil {
		return 0
	}
	return n.AbsoluteBoundingBox.Height
}

// IsAutoLayout reports whether the node uses HORIZONTAL or VERTICAL auto-layout.
func (n *Node) IsAutoLayout() bool {
	return n.LayoutMode != "" && n.LayoutMode != LayoutNone
}

// IsHorizontal reports whether the node lays its children out in a row.
func (n *Node) IsHorizontal() bool { return n.LayoutMode == LayoutHorizontal }

// IsVertical reports whether the node lays its children out in a column.
func (n *Node) IsVertical() bool { return n.LayoutMode == LayoutVertical }

// NameContains reports whether the lower-cased node name contains any of the
// given lower-case substrings.
func (n *Node) NameContains(substrs ...string) bool {
	name := strings.ToLower(n.Name)
	for _, s := range substrs {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// BackgroundColor returns the hex color of the first visible SOLID fill.
func (n *Node) BackgroundColor() (string, bool) {
	fill := n.VisibleSolidFill()
	if fill == nil {
		return "", false
	}
	return Hex(fill.Color), true
}

// Padding holds the four auto-layout paddings of a node, in design units.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// String formats the padding as CSS shorthand: "top right bottom left".
func (p Padding) String() string {
	return fmt.Sprintf("%s %s %s %s", Px(p.Top), Px(p.Right), Px(p.Bottom), Px(p.Left))
}

// Padding returns the node paddings, or nil when no side is set.
func (n *Node) Padding() *Padding {
	if n.PaddingTop == 0 && n.PaddingRight == 0 && n.PaddingBottom == 0 && n.PaddingLeft == 0 {
		return nil
	}
	return &Padding{
		Top:    n.PaddingTop,
		Right:  n.PaddingRight,
		Bottom: n.PaddingBottom,
		Left:   n.PaddingLeft,
	}
}

// Hex converts a Figma color (0-1 float channels) to "#RRGGBB".
// Channels are scaled by 255, rounded half up and clamped to a byte.
// A nil color is black.
func Hex(c *Color) string {
	if c == nil {
		return "#000000"
	}
	return fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	n := int(math.Floor(v*255 + 0.5))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

// Px formats a design-unit value as a pixel string using the shortest decimal
// that round-trips: 16 -> "16px", 1.5 -> "1.5px".
func Px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// Walk visits root and all of its descendants in pre-order, children in
// document order. It uses an explicit stack, so arbitrarily deep trees cannot
// overflow the goroutine stack.
func Walk(root *Node, fn func(*Node)) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}
}

// CountNodes returns the number of nodes in the tree rooted at root.
func CountNodes(root *Node) int {
	count := 0
	Walk(root, func(*Node) { count++ })
	return count
}

// FindNode returns the first node in pre-order with the given ID, or nil.
func FindNode(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) {
		if found == nil && n.ID == id {
			found = n
		}
	})
	return found
}
