// Package render draws the QR symbol for a settings snapshot, describes the
// composed preview and rasterizes it into the exported image.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/yeqown/go-qrcode/v2"

	"github.com/cristianadrielbraun/qrfusion/internal/logo"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
)

var ErrEmptyData = errors.New("nothing to encode")

var (
	defaultFg = color.RGBA{0x1A, 0x20, 0x2C, 0xFF}
	defaultBg = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

// Surface is a rendered QR symbol: size x size pixels with the quiet zone and
// any logo already applied. It is the handle the export draws from.
type Surface struct {
	img     *image.RGBA
	modules int
}

// Image returns the symbol bitmap.
func (s *Surface) Image() image.Image { return s.img }

// Size is the edge length in pixels.
func (s *Surface) Size() int { return s.img.Bounds().Dx() }

// Modules is the edge length of the QR matrix in modules.
func (s *Surface) Modules() int { return s.modules }

// matrixWriter captures the encoded matrix instead of writing a file.
type matrixWriter struct {
	mat *qrcode.Matrix
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	w.mat = &mat
	return nil
}

func (w *matrixWriter) Close() error { return nil }

func ecLevel(l settings.Level) qrcode.EncodeOption {
	switch l {
	case settings.LevelLow:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case settings.LevelMedium:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	case settings.LevelQuartile:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	default:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	}
}

// encode returns the module bitmap for data, indexed [y][x].
func encode(data string, level settings.Level) ([][]bool, error) {
	qrc, err := qrcode.NewWith(data, ecLevel(level))
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	w := &matrixWriter{}
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("capture qr matrix: %w", err)
	}
	if w.mat == nil || w.mat.Width() == 0 {
		return nil, fmt.Errorf("encode qr: empty matrix")
	}

	bits := make([][]bool, w.mat.Height())
	for i := range bits {
		bits[i] = make([]bool, w.mat.Width())
	}
	w.mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		bits[y][x] = v.IsSet()
	})
	return bits, nil
}

// RenderSymbol draws the QR symbol for s. Modules fill the square inside the
// quiet zone and are sampled per pixel, so edges stay crisp at any size.
func RenderSymbol(s settings.Settings) (*Surface, error) {
	if s.Data == "" {
		return nil, ErrEmptyData
	}
	bits, err := encode(s.Data, s.Level)
	if err != nil {
		return nil, err
	}
	n := len(bits)

	size := s.Size
	qz := s.QuietZone
	// Keep at least one pixel per module when the quiet zone eats the canvas.
	if size-2*qz < n {
		qz = max(0, (size-n)/2)
	}
	inner := size - 2*qz
	if inner < n {
		return nil, fmt.Errorf("encode qr: %d modules do not fit in %dpx", n, size)
	}

	fg := ParseColor(s.FgColor, defaultFg)
	bg := ParseColor(s.BgColor, defaultBg)

	var box image.Rectangle
	var mark image.Image
	if s.HasLogo() {
		lw, lh := min(s.LogoWidth, size), min(s.LogoHeight, size)
		mark, err = logo.DecodeSized(s.LogoSrc, lw, lh)
		if err != nil {
			return nil, fmt.Errorf("render logo: %w", err)
		}
		x0, y0 := (size-lw)/2, (size-lh)/2
		box = image.Rect(x0, y0, x0+lw, y0+lh)
	}

	// edges[i] is the first pixel (relative to the quiet zone) of module i,
	// matching the per-pixel sampling below.
	edges := make([]int, n+1)
	for i := range edges {
		edges[i] = (i*inner + n - 1) / n
	}
	excavated := func(mx, my int) bool {
		if mark == nil || !s.LogoExcavate {
			return false
		}
		r := image.Rect(qz+edges[mx], qz+edges[my], qz+edges[mx+1], qz+edges[my+1])
		return r.Overlaps(box)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := bg
			if x >= qz && x < qz+inner && y >= qz && y < qz+inner {
				mx := (x - qz) * n / inner
				my := (y - qz) * n / inner
				if bits[my][mx] && !excavated(mx, my) {
					c = fg
				}
			}
			img.SetRGBA(x, y, c)
		}
	}

	if mark != nil {
		dc := gg.NewContextForRGBA(img)
		dc.DrawImage(mark, box.Min.X, box.Min.Y)
	}
	return &Surface{img: img, modules: n}, nil
}
