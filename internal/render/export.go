package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
)

var (
	ErrNoSurface = errors.New("qr surface not rendered")
	ErrNoCanvas  = errors.New("drawing canvas unavailable")
)

// LayerKind identifies one paint step of the export.
type LayerKind int

const (
	LayerBorder LayerKind = iota
	LayerBackground
	LayerSymbol
)

func (k LayerKind) String() string {
	switch k {
	case LayerBorder:
		return "border"
	case LayerBackground:
		return "background"
	case LayerSymbol:
		return "symbol"
	}
	return "unknown"
}

// Layer is a single paint operation on the export canvas.
type Layer struct {
	Kind   LayerKind
	Rect   image.Rectangle
	Radius float64
	Color  color.RGBA
}

// Plan lists the paint operations for l in drawing order.
func Plan(l Layout) []Layer {
	edge := l.Edge
	var layers []Layer
	if l.HasBorder() {
		layers = append(layers, Layer{
			Kind:   LayerBorder,
			Rect:   image.Rect(0, 0, edge, edge),
			Radius: float64(l.BorderRadius),
			Color:  l.BorderColor,
		})
	}
	bw := l.BorderWidth
	layers = append(layers, Layer{
		Kind:   LayerBackground,
		Rect:   image.Rect(bw, bw, edge-bw, edge-bw),
		Radius: float64(l.InnerRadius()),
		Color:  l.Background,
	})
	off := l.SymbolOffset()
	layers = append(layers, Layer{
		Kind: LayerSymbol,
		Rect: image.Rectangle{Min: off, Max: off.Add(image.Pt(l.Size, l.Size))},
	})
	return layers
}

// Export composes the preview into one standalone raster image of
// Layout.Edge x Layout.Edge pixels.
func Export(p *Preview) (*image.RGBA, error) {
	if p == nil || p.Surface == nil || p.Surface.img == nil {
		return nil, ErrNoSurface
	}
	if p.Layout.Edge <= 0 {
		return nil, ErrNoCanvas
	}

	dc := gg.NewContext(p.Layout.Edge, p.Layout.Edge)
	canvas, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, ErrNoCanvas
	}

	for _, layer := range Plan(p.Layout) {
		switch layer.Kind {
		case LayerBorder, LayerBackground:
			dc.SetColor(layer.Color)
			r := layer.Rect
			FillRoundedRect(dc, float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), layer.Radius)
		case LayerSymbol:
			draw.Draw(canvas, layer.Rect, p.Surface.img, image.Point{}, draw.Over)
		}
	}
	return canvas, nil
}

// EffectiveRadius clamps radius so the corner arcs of a width x height
// rectangle never overlap.
func EffectiveRadius(width, height, radius float64) float64 {
	if width < 2*radius {
		radius = width / 2
	}
	if height < 2*radius {
		radius = height / 2
	}
	return math.Max(0, radius)
}

// FillRoundedRect fills a rounded rectangle with the context's current color
// and returns the radius actually used.
func FillRoundedRect(dc *gg.Context, x, y, width, height, radius float64) float64 {
	r := EffectiveRadius(width, height, radius)
	x1, y1 := x+width, y+height

	dc.NewSubPath()
	dc.MoveTo(x+r, y)
	dc.LineTo(x1-r, y)
	dc.DrawArc(x1-r, y+r, r, gg.Radians(270), gg.Radians(360))
	dc.LineTo(x1, y1-r)
	dc.DrawArc(x1-r, y1-r, r, gg.Radians(0), gg.Radians(90))
	dc.LineTo(x+r, y1)
	dc.DrawArc(x+r, y1-r, r, gg.Radians(90), gg.Radians(180))
	dc.LineTo(x, y+r)
	dc.DrawArc(x+r, y+r, r, gg.Radians(180), gg.Radians(270))
	dc.ClosePath()
	dc.Fill()
	return r
}

// EncodePNG writes img as PNG. Output is byte-identical for identical input.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// EncodeJPEG flattens img onto an opaque background and writes it as JPEG.
func EncodeJPEG(w io.Writer, img image.Image, bg color.RGBA) error {
	if bg.A == 0 {
		bg = color.RGBA{255, 255, 255, 255}
	}
	bg.A = 255
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return jpeg.Encode(w, out, &jpeg.Options{Quality: 92})
}
