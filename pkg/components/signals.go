package components

import (
	"github.com/samber/lo"

	"github.com/kataras/figma-analyzer/pkg/figma"
)

// MaxIconSize is the largest bounding-box width still considered an icon.
const MaxIconSize = 48

// Each kind is recognized by a structural signal OR a naming signal.
// The signals are kept separate so they can be reasoned about and tested alone.

func buttonShape(n *figma.Node) bool {
	return n.HasTextChild() && n.HasVisibleSolidFill() && n.HasCornerRadius()
}

func buttonName(n *figma.Node) bool {
	return n.NameContains("button", "btn", "cta")
}

// IsButton reports whether n looks like a button.
func IsButton(n *figma.Node) bool {
	return buttonShape(n) || buttonName(n)
}

func cardShape(n *figma.Node) bool {
	return len(n.Children) >= 2 && n.HasVisibleFill() && n.HasCornerRadius() && n.IsVertical()
}

func cardName(n *figma.Node) bool {
	return n.NameContains("card")
}

// IsCard reports whether n looks like a card.
func IsCard(n *figma.Node) bool {
	return cardShape(n) || cardName(n)
}

func navigationShape(n *figma.Node) bool {
	return n.IsHorizontal() && len(n.Children) >= 3 && len(links(n)) >= 3
}

func navigationName(n *figma.Node) bool {
	return n.NameContains("nav", "header", "menu")
}

// IsNavigation reports whether n looks like a navigation bar.
func IsNavigation(n *figma.Node) bool {
	return navigationShape(n) || navigationName(n)
}

func formName(n *figma.Node) bool {
	return n.NameContains("input", "form", "field", "textarea", "select")
}

// IsFormElement reports whether n looks like a form control. Only names are
// considered: input boxes are structurally indistinguishable from plain frames.
func IsFormElement(n *figma.Node) bool {
	return formName(n)
}

func iconShape(n *figma.Node) bool {
	return n.Width() <= MaxIconSize && n.IsVectorLike()
}

func iconName(n *figma.Node) bool {
	return n.NameContains("icon")
}

// IsIcon reports whether n looks like an icon.
func IsIcon(n *figma.Node) bool {
	return iconShape(n) || iconName(n)
}

// links returns the direct children that are text or contain text.
func links(n *figma.Node) []figma.Node {
	return lo.Filter(n.Children, func(child figma.Node, _ int) bool {
		return child.IsTextBearing()
	})
}

func hasImageChild(n *figma.Node) bool {
	return lo.ContainsBy(n.Children, func(child figma.Node) bool {
		return child.Kind() == figma.KindRectangle && child.HasImageFill()
	})
}

func hasButtonChild(n *figma.Node) bool {
	return lo.ContainsBy(n.Children, func(child figma.Node) bool {
		return IsButton(&child)
	})
}
