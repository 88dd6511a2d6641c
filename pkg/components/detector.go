// Package components recognizes common UI patterns (buttons, cards,
// navigation bars, form controls and icons) in a Figma node tree.
//
// Every node is tested against every kind; a node may be reported as more than
// one kind. Records are listed in document pre-order.
package components

import (
	"github.com/kataras/figma-analyzer/pkg/figma"
)

// Catalog is the result of Detect.
type Catalog struct {
	Components Components `json:"components"`
	Summary    Summary    `json:"summary"`
}

// Components groups detected records by kind.
type Components struct {
	Buttons    []Button     `json:"buttons"`
	Cards      []Card       `json:"cards"`
	Navigation []Navigation `json:"navigation"`
	Forms      []Form       `json:"forms"`
	Icons      []Icon       `json:"icons"`
}

// Summary counts detected records by kind.
type Summary struct {
	ButtonCount     int `json:"buttonCount"`
	CardCount       int `json:"cardCount"`
	NavigationCount int `json:"navigationCount"`
	FormCount       int `json:"formCount"`
	IconCount       int `json:"iconCount"`
}

// Total returns the number of records across all kinds.
func (s Summary) Total() int {
	return s.ButtonCount + s.CardCount + s.NavigationCount + s.FormCount + s.IconCount
}

// Detect walks the tree rooted at root and returns every recognized component.
func Detect(root *figma.Node) *Catalog {
	c := Components{
		Buttons:    []Button{},
		Cards:      []Card{},
		Navigation: []Navigation{},
		Forms:      []Form{},
		Icons:      []Icon{},
	}

	figma.Walk(root, func(n *figma.Node) {
		if IsButton(n) {
			c.Buttons = append(c.Buttons, analyzeButton(n))
		}
		if IsCard(n) {
			c.Cards = append(c.Cards, analyzeCard(n))
		}
		if IsNavigation(n) {
			c.Navigation = append(c.Navigation, analyzeNavigation(n))
		}
		if IsFormElement(n) {
			c.Forms = append(c.Forms, analyzeForm(n))
		}
		if IsIcon(n) {
			c.Icons = append(c.Icons, analyzeIcon(n))
		}
	})

	return &Catalog{
		Components: c,
		Summary: Summary{
			ButtonCount:     len(c.Buttons),
			CardCount:       len(c.Cards),
			NavigationCount: len(c.Navigation),
			FormCount:       len(c.Forms),
			IconCount:       len(c.Icons),
		},
	}
}
