package components

import (
	"github.com/kataras/figma-analyzer/pkg/figma"
)

// Record kinds, also used as the "type" tag of each record.
const (
	KindButton     = "button"
	KindCard       = "card"
	KindNavigation = "navigation"
	KindForm       = "form"
	KindIcon       = "icon"
)

// Box holds the visual properties shared by sized components.
// BgColor is nil when the node has no visible solid fill.
type Box struct {
	BgColor      *string        `json:"bgColor"`
	BorderRadius float64        `json:"borderRadius"`
	Padding      *figma.Padding `json:"padding"`
	Width        float64        `json:"width"`
	Height       float64        `json:"height"`
}

// ButtonProperties extends Box with the label color.
type ButtonProperties struct {
	BgColor      *string        `json:"bgColor"`
	TextColor    *string        `json:"textColor"`
	BorderRadius float64        `json:"borderRadius"`
	Padding      *figma.Padding `json:"padding"`
	Width        float64        `json:"width"`
	Height       float64        `json:"height"`
}

// Button is a detected button.
type Button struct {
	Type       string           `json:"type"`
	NodeID     string           `json:"nodeId"`
	Variant    string           `json:"variant"`
	Text       string           `json:"text"`
	Properties ButtonProperties `json:"properties"`
}

// Card is a detected card.
type Card struct {
	Type       string `json:"type"`
	NodeID     string `json:"nodeId"`
	Variant    string `json:"variant"`
	HasImage   bool   `json:"hasImage"`
	HasText    bool   `json:"hasText"`
	HasButton  bool   `json:"hasButton"`
	Properties Box    `json:"properties"`
}

// NavigationProperties describes a navigation container.
type NavigationProperties struct {
	BgColor *string        `json:"bgColor"`
	Gap     float64        `json:"gap"`
	Padding *figma.Padding `json:"padding"`
}

// Navigation is a detected header or footer navigation.
type Navigation struct {
	Type       string               `json:"type"`
	NodeID     string               `json:"nodeId"`
	Variant    string               `json:"variant"`
	LinkCount  int                  `json:"linkCount"`
	Properties NavigationProperties `json:"properties"`
}

// Form is a detected form control.
type Form struct {
	Type        string `json:"type"`
	NodeID      string `json:"nodeId"`
	ElementType string `json:"elementType"`
	Properties  Box    `json:"properties"`
}

// Icon is a detected icon.
type Icon struct {
	Type   string  `json:"type"`
	NodeID string  `json:"nodeId"`
	Name   string  `json:"name"`
	Size   float64 `json:"size"`
	Color  *string `json:"color"`
}

// DefaultButtonText labels buttons without a text child.
const DefaultButtonText = "Button"

func analyzeButton(n *figma.Node) Button {
	b := Button{
		Type:    KindButton,
		NodeID:  n.ID,
		Variant: ButtonVariant(n),
		Text:    DefaultButtonText,
		Properties: ButtonProperties{
			BgColor:      bgColor(n),
			BorderRadius: n.Radius(),
			Padding:      n.Padding(),
			Width:        n.Width(),
			Height:       n.Height(),
		},
	}

	if text := n.FirstTextChild(); text != nil {
		if text.Characters != "" {
			b.Text = text.Characters
		}
		if len(text.Fills) > 0 && text.Fills[0].Color != nil {
			c := figma.Hex(text.Fills[0].Color)
			b.Properties.TextColor = &c
		}
	}

	return b
}

func analyzeCard(n *figma.Node) Card {
	return Card{
		Type:       KindCard,
		NodeID:     n.ID,
		Variant:    CardVariant(n),
		HasImage:   hasImageChild(n),
		HasText:    n.HasTextChild(),
		HasButton:  hasButtonChild(n),
		Properties: box(n),
	}
}

func analyzeNavigation(n *figma.Node) Navigation {
	variant := "header"
	if n.NameContains("footer") {
		variant = "footer"
	}

	return Navigation{
		Type:      KindNavigation,
		NodeID:    n.ID,
		Variant:   variant,
		LinkCount: len(links(n)),
		Properties: NavigationProperties{
			BgColor: bgColor(n),
			Gap:     n.ItemSpacing,
			Padding: n.Padding(),
		},
	}
}

func analyzeForm(n *figma.Node) Form {
	return Form{
		Type:        KindForm,
		NodeID:      n.ID,
		ElementType: FormElementType(n),
		Properties:  box(n),
	}
}

func analyzeIcon(n *figma.Node) Icon {
	return Icon{
		Type:   KindIcon,
		NodeID: n.ID,
		Name:   n.Name,
		Size:   n.Width(),
		Color:  bgColor(n),
	}
}

func box(n *figma.Node) Box {
	return Box{
		BgColor:      bgColor(n),
		BorderRadius: n.Radius(),
		Padding:      n.Padding(),
		Width:        n.Width(),
		Height:       n.Height(),
	}
}

func bgColor(n *figma.Node) *string {
	c, ok := n.BackgroundColor()
	if !ok {
		return nil
	}
	return &c
}
