package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cristianadrielbraun/qrfusion/internal/settings"
)

// Layout is the box model of the composed image, outside in: border,
// background with padding, then the symbol. It is shared by the HTML preview
// (as CSS) and the raster export.
type Layout struct {
	Edge         int
	Size         int
	Padding      int
	BorderWidth  int
	BorderRadius int
	BorderColor  color.RGBA
	Background   color.RGBA
}

// LayoutOf derives the box model from s.
func LayoutOf(s settings.Settings) Layout {
	return Layout{
		Edge:         s.CanvasEdge(),
		Size:         s.Size,
		Padding:      s.Padding,
		BorderWidth:  s.BorderWidth,
		BorderRadius: s.BorderRadius,
		BorderColor:  ParseColor(s.BorderColor, defaultFg),
		Background:   ParseColor(s.BgColor, defaultBg),
	}
}

// HasBorder reports whether a border stroke is drawn.
func (l Layout) HasBorder() bool { return l.BorderWidth > 0 }

// InnerRadius is the corner radius of the background inside the border.
func (l Layout) InnerRadius() int { return max(0, l.BorderRadius-l.BorderWidth) }

// SymbolOffset is where the symbol's top-left corner lands on the canvas.
func (l Layout) SymbolOffset() image.Point {
	d := l.BorderWidth + l.Padding
	return image.Pt(d, d)
}

// CSS renders the layout as inline style for the live preview container.
func (l Layout) CSS() string {
	border := "none"
	if l.HasBorder() {
		border = fmt.Sprintf("%dpx solid %s", l.BorderWidth, HexColor(l.BorderColor))
	}
	return fmt.Sprintf("padding:%dpx;border-radius:%dpx;border:%s;background-color:%s;display:inline-block;line-height:0",
		l.Padding, l.BorderRadius, border, HexColor(l.Background))
}

// Preview pairs a layout with the symbol surface it wraps. The export draws
// from Surface directly.
type Preview struct {
	Layout   Layout
	Settings settings.Settings
	Surface  *Surface
}

// Compose renders the symbol for s and wraps it in its layout.
func Compose(s settings.Settings) (*Preview, error) {
	surface, err := RenderSymbol(s)
	if err != nil {
		return nil, err
	}
	return &Preview{Layout: LayoutOf(s), Settings: s, Surface: surface}, nil
}
