package tokens

import (
	"testing"

	"github.com/kataras/figma-analyzer/pkg/figma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func solid(r, g, b float64) figma.Paint {
	return figma.Paint{Type: figma.PaintSolid, Color: &figma.Color{R: r, G: g, B: b, A: 1}}
}

func textNode(size float64) figma.Node {
	return figma.Node{Type: figma.TypeText, Style: &figma.TypeStyle{FontFamily: "Inter", FontSize: size}}
}

func TestExtract_Empty(t *testing.T) {
	for _, root := range []*figma.Node{nil, {}} {
		set := Extract(root)
		require.NotNil(t, set)
		assert.Empty(t, set.Colors)
		assert.Empty(t, set.Fonts)
		assert.Empty(t, set.SpacingScale)
		assert.NotNil(t, set.Colors, "lists are materialized even when empty")
	}
}

func TestExtract_Colors(t *testing.T) {
	root := &figma.Node{
		Fills: []figma.Paint{
			solid(1, 0, 0),
			{Type: figma.PaintSolid, Visible: ptr(false), Color: &figma.Color{G: 1}},
			{Type: figma.PaintImage, ImageRef: "abc"},
		},
		Strokes: []figma.Paint{solid(0, 0, 1), solid(1, 0, 0)},
		Children: []figma.Node{
			{Fills: []figma.Paint{solid(1, 0, 0)}},
			{Strokes: []figma.Paint{{Type: figma.PaintSolid, Visible: ptr(false), Color: &figma.Color{R: 1, G: 1, B: 1}}}},
		},
	}

	set := Extract(root)
	assert.Equal(t, []string{"#FF0000", "#0000FF"}, set.Colors)
}

func TestExtract_Gradients(t *testing.T) {
	linear := figma.Paint{
		Type: figma.PaintGradientLinear,
		GradientStops: []figma.GradientStop{
			{Position: 0, Color: &figma.Color{R: 1}},
			{Position: 1, Color: &figma.Color{B: 1}},
		},
	}
	root := &figma.Node{
		Fills: []figma.Paint{
			linear,
			linear,
			{Type: figma.PaintGradientRadial},
		},
	}

	set := Extract(root)
	require.Len(t, set.Gradients, 1)
	assert.Equal(t, "#FF0000 → #0000FF", set.Gradients[0])
}

func TestExtract_TypographyBuckets(t *testing.T) {
	tests := []struct {
		size   float64
		bucket string
	}{
		{32, "headings"},
		{48, "headings"},
		{31.999, "body"},
		{14, "body"},
		{13.999, "captions"},
		{10, "captions"},
	}

	for _, tt := range tests {
		t.Run(trimFloat(tt.size), func(t *testing.T) {
			n := textNode(tt.size)
			set := Extract(&n)

			buckets := map[string][]string{
				"headings": set.Typography.Headings,
				"body":     set.Typography.Body,
				"captions": set.Typography.Captions,
			}
			for name, got := range buckets {
				if name == tt.bucket {
					assert.Len(t, got, 1, name)
				} else {
					assert.Empty(t, got, name)
				}
			}
			assert.Len(t, set.Fonts, 1)
		})
	}
}

func TestFontDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		style figma.TypeStyle
		want  string
	}{
		{
			name:  "defaults",
			style: figma.TypeStyle{FontFamily: "Inter", FontSize: 16},
			want:  "Family: Inter, Weight: 400, Size: 16px, LineHeight: Auto, LetterSpacing: 0px, Align: left",
		},
		{
			name: "all fields",
			style: figma.TypeStyle{
				FontFamily:          "Roboto",
				FontWeight:          700,
				FontSize:            32,
				LineHeightPx:        38.5,
				LetterSpacing:       -0.456,
				TextAlignHorizontal: "CENTER",
			},
			want: "Family: Roboto, Weight: 700, Size: 32px, LineHeight: 39px, LetterSpacing: -0.46px, Align: center",
		},
		{
			name:  "fractional size",
			style: figma.TypeStyle{FontFamily: "Inter", FontSize: 13.5, LineHeightPx: 18.2},
			want:  "Family: Inter, Weight: 400, Size: 13.5px, LineHeight: 18px, LetterSpacing: 0px, Align: left",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FontDescriptor(&tt.style))
		})
	}
}

func TestExtract_SpacingScale(t *testing.T) {
	root := &figma.Node{
		LayoutMode:    figma.LayoutHorizontal,
		ItemSpacing:   24,
		PaddingTop:    8,
		PaddingLeft:   16,
		PaddingBottom: 8,
	}

	set := Extract(root)
	assert.Equal(t, []string{"8px", "16px", "24px"}, set.SpacingScale)
	assert.Equal(t, []string{"24px"}, set.Layout.Gaps)
	assert.Equal(t, []string{"8px 0px 8px 16px"}, set.Layout.Paddings)
}

func TestExtract_SpacingScaleIsNumeric(t *testing.T) {
	root := &figma.Node{
		LayoutMode:  figma.LayoutVertical,
		ItemSpacing: 100,
		Children: []figma.Node{
			{LayoutMode: figma.LayoutVertical, ItemSpacing: 9},
			{LayoutMode: figma.LayoutVertical, ItemSpacing: 12.5},
		},
	}

	// A lexical sort would put "100px" first.
	assert.Equal(t, []string{"9px", "12.5px", "100px"}, Extract(root).SpacingScale)
}

func TestExtract_LayoutIgnoredWithoutAutoLayout(t *testing.T) {
	for _, mode := range []string{"", figma.LayoutNone} {
		root := &figma.Node{LayoutMode: mode, ItemSpacing: 10, PaddingTop: 4}
		set := Extract(root)
		assert.Empty(t, set.Layout.Gaps, mode)
		assert.Empty(t, set.Layout.Paddings, mode)
		assert.Empty(t, set.SpacingScale, mode)
	}
}

func TestExtract_PaddingRightOnly(t *testing.T) {
	root := &figma.Node{LayoutMode: figma.LayoutHorizontal, PaddingRight: 20}
	set := Extract(root)
	assert.Equal(t, []string{"0px 20px 0px 0px"}, set.Layout.Paddings)
	assert.Equal(t, []string{"20px"}, set.SpacingScale)
}

func TestExtract_Borders(t *testing.T) {
	root := &figma.Node{
		CornerRadius: ptr(8.0),
		StrokeWeight: 1,
		Children: []figma.Node{
			{RectangleCornerRadii: []float64{4, 0, 12, 4}},
			{CornerRadius: ptr(0.0), RectangleCornerRadii: []float64{99}},
			{StrokeWeight: 1.5},
		},
	}

	set := Extract(root)
	assert.Equal(t, []string{"8px", "4px", "12px", "0px"}, set.Borders.Radius)
	assert.Equal(t, []string{"1px", "1.5px"}, set.Borders.Widths)
}

func TestExtract_Effects(t *testing.T) {
	root := &figma.Node{
		Effects: []figma.Effect{
			{Type: "DROP_SHADOW", Offset: &figma.Vector{X: 0, Y: 4}, Radius: 12, Color: &figma.Color{R: 0.2, G: 0.2, B: 0.2, A: 0.25}},
			{Type: "INNER_SHADOW", Radius: 2},
			{Type: "DROP_SHADOW", Visible: ptr(false), Radius: 50},
			{Type: "LAYER_BLUR", Radius: 8},
			{Type: "BACKGROUND_BLUR", Radius: 20},
			{Type: "BACKGROUND_BLUR", Radius: 20},
		},
	}

	set := Extract(root)
	assert.Equal(t, []string{"0px 4px 12px #333333", "0px 0px 2px #000000"}, set.Effects.Shadows)
	assert.Equal(t, []string{"8px", "20px"}, set.Effects.Blurs)
}

func TestExtract_Idempotent(t *testing.T) {
	root := &figma.Node{
		LayoutMode:   figma.LayoutVertical,
		ItemSpacing:  16,
		Fills:        []figma.Paint{solid(0.1, 0.2, 0.3)},
		CornerRadius: ptr(12.0),
		Children: []figma.Node{
			textNode(40),
			textNode(12),
			{Type: figma.TypeRectangle, Fills: []figma.Paint{solid(1, 1, 1)}},
		},
	}

	assert.Equal(t, Extract(root), Extract(root))
}

func TestExtract_IgnoresAnnotations(t *testing.T) {
	plain := &figma.Node{Fills: []figma.Paint{solid(1, 0, 0)}}
	annotated := &figma.Node{Fills: []figma.Paint{solid(1, 0, 0)}, LocalSrc: "/a.png", AIInstruction: "USE THIS IMAGE SOURCE: /a.png"}
	assert.Equal(t, Extract(plain), Extract(annotated))
}
