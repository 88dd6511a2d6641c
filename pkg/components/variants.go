package components

import (
	"github.com/kataras/figma-analyzer/pkg/figma"
)

// ButtonVariant names the button style. An explicit name wins; otherwise the
// variant follows from fill and stroke: fill only is primary, stroke only is
// outline, neither is text, both is default.
func ButtonVariant(n *figma.Node) string {
	switch {
	case n.NameContains("primary"):
		return "primary"
	case n.NameContains("secondary"):
		return "secondary"
	case n.NameContains("outline"):
		return "outline"
	case n.NameContains("text", "link"):
		return "text"
	}

	hasFill, hasStroke := n.HasVisibleSolidFill(), n.HasStroke()
	switch {
	case hasFill && !hasStroke:
		return "primary"
	case !hasFill && hasStroke:
		return "outline"
	case !hasFill && !hasStroke:
		return "text"
	default:
		return "default"
	}
}

// CardVariant names the card by its content type, or "default".
func CardVariant(n *figma.Node) string {
	switch {
	case n.NameContains("product"):
		return "product"
	case n.NameContains("blog", "article"):
		return "blog"
	case n.NameContains("feature"):
		return "feature"
	case n.NameContains("testimonial"):
		return "testimonial"
	default:
		return "default"
	}
}

// FormElementType infers the control type from the node name. Later matches
// take precedence, so "radio select" is a radio.
func FormElementType(n *figma.Node) string {
	elementType := "input"
	for _, candidate := range []string{"textarea", "select", "checkbox", "radio"} {
		if n.NameContains(candidate) {
			elementType = candidate
		}
	}
	return elementType
}
