package figma

// FileResponse represents the complete response from the Figma file API endpoint.
// It contains the file metadata, document structure, published styles, and schema version information.
type FileResponse struct {
	Name          string           `json:"name"`
	LastModified  string           `json:"lastModified"`
	ThumbnailURL  string           `json:"thumbnailUrl"`
	Version       string           `json:"version"`
	Document      Node             `json:"document"`
	Styles        map[string]Style `json:"styles"`
	SchemaVersion int              `json:"schemaVersion"`
}

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// It contains file metadata and a map of node IDs to their corresponding NodeData.
type NodesResponse struct {
	Name         string              `json:"name"`
	LastModified string              `json:"lastModified"`
	Version      string              `json:"version"`
	Nodes        map[string]NodeData `json:"nodes"`
}

// NodeData wraps a node with its document structure and optional component/style information.
type NodeData struct {
	Document   Node                 `json:"document"`
	Components map[string]Component `json:"components,omitempty"`
	Styles     map[string]Style     `json:"styles,omitempty"`
}

// ImagesResponse is the response of the render API: node ID -> temporary download URL.
// A null URL means Figma could not render that node.
type ImagesResponse struct {
	Err    *string           `json:"err"`
	Images map[string]string `json:"images"`
}

// Component represents a Figma component definition with its metadata.
type Component struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Style represents a published Figma style with its basic properties.
type Style struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StyleType   string `json:"style_type"`
}

// Node represents a single element in the Figma document tree hierarchy.
//
// Every field is optional. Fields whose presence carries meaning (corner radius,
// paint visibility) are pointers so that "absent" and "zero" stay distinguishable.
//
// LocalSrc and AIInstruction are annotations added by the asset store before the
// tree is handed to a generative backend; the analyzers never read them.
type Node struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	Children             []Node     `json:"children,omitempty"`
	CanvasBackground     *Color     `json:"backgroundColor,omitempty"` // deprecated by Figma in favour of fills
	Fills                []Paint    `json:"fills,omitempty"`
	Strokes              []Paint    `json:"strokes,omitempty"`
	StrokeWeight         float64    `json:"strokeWeight,omitempty"`
	CornerRadius         *float64   `json:"cornerRadius,omitempty"`
	RectangleCornerRadii []float64  `json:"rectangleCornerRadii,omitempty"`
	Effects              []Effect   `json:"effects,omitempty"`
	Characters           string     `json:"characters,omitempty"`
	Style                *TypeStyle `json:"style,omitempty"`
	AbsoluteBoundingBox  *Rectangle `json:"absoluteBoundingBox,omitempty"`
	LayoutMode           string     `json:"layoutMode,omitempty"`
	PaddingLeft          float64    `json:"paddingLeft,omitempty"`
	PaddingRight         float64    `json:"paddingRight,omitempty"`
	PaddingTop           float64    `json:"paddingTop,omitempty"`
	PaddingBottom        float64    `json:"paddingBottom,omitempty"`
	ItemSpacing          float64    `json:"itemSpacing,omitempty"`

	LocalSrc      string `json:"localSrc,omitempty"`
	AIInstruction string `json:"AI_INSTRUCTION,omitempty"`
}

// Color represents an RGBA color with float values ranging from 0 to 1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint represents a fill or stroke applied to a Figma node.
// Figma omits "visible" when the paint is visible, so a nil Visible means true.
type Paint struct {
	Type          string         `json:"type"`
	Visible       *bool          `json:"visible,omitempty"`
	Opacity       *float64       `json:"opacity,omitempty"`
	Color         *Color         `json:"color,omitempty"`
	GradientStops []GradientStop `json:"gradientStops,omitempty"`
	ImageRef      string         `json:"imageRef,omitempty"`
	ScaleMode     string         `json:"scaleMode,omitempty"`
}

// IsVisible reports whether the paint is rendered.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

// GradientStop is a single color stop of a gradient paint.
type GradientStop struct {
	Position float64 `json:"position"`
	Color    *Color  `json:"color,omitempty"`
}

// Effect represents a visual effect applied to a Figma node such as drop shadows, inner shadows, or blur effects.
type Effect struct {
	Type      string  `json:"type"`
	Visible   *bool   `json:"visible,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Color     *Color  `json:"color,omitempty"`
	Offset    *Vector `json:"offset,omitempty"`
	Spread    float64 `json:"spread,omitempty"`
	BlendMode string  `json:"blendMode,omitempty"`
}

// IsVisible reports whether the effect is rendered.
func (e Effect) IsVisible() bool {
	return e.Visible == nil || *e.Visible
}

// Vector represents a 2D coordinate or offset with X and Y values.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TypeStyle represents the text styling properties of a TEXT node.
type TypeStyle struct {
	FontFamily          string  `json:"fontFamily"`
	FontPostScriptName  string  `json:"fontPostScriptName,omitempty"`
	FontWeight          float64 `json:"fontWeight,omitempty"`
	FontSize            float64 `json:"fontSize,omitempty"`
	LineHeightPx        float64 `json:"lineHeightPx,omitempty"`
	LetterSpacing       float64 `json:"letterSpacing,omitempty"`
	TextAlignHorizontal string  `json:"textAlignHorizontal,omitempty"`
	TextAlignVertical   string  `json:"textAlignVertical,omitempty"`
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
