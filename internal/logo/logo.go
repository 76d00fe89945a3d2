// Package logo converts uploaded logo files into embeddable data: URL
// payloads and decodes those payloads back into images for drawing.
package logo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeSVG  = "image/svg+xml"
)

// DefaultMaxBytes bounds an uploaded logo file.
const DefaultMaxBytes = 2 << 20

// MaxPixels bounds the decoded size of a raster logo. A small compressed file
// can declare enormous dimensions, so the header is checked before decoding.
var MaxPixels = 4096 * 4096

var (
	ErrUnsupported = errors.New("unsupported logo type")
	ErrDecode      = errors.New("logo could not be decoded")
	ErrTooLarge    = errors.New("logo file too large")

	// ErrTooManyPixels is an ErrTooLarge for images whose dimensions exceed
	// MaxPixels.
	ErrTooManyPixels = fmt.Errorf("%w: dimensions exceed limit", ErrTooLarge)
)

// Read consumes a logo file and returns it as a data: URL. The content type is
// sniffed, not trusted from the client, and the image is decoded once so a
// corrupt file is rejected here instead of breaking every later render.
func Read(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrDecode)
	}

	mime, err := Sniff(data)
	if err != nil {
		return "", err
	}
	if _, err := decode(mime, data); err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Sniff returns the accepted MIME type of data.
func Sniff(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case MimePNG, MimeJPEG:
		return ct, nil
	default:
		if strings.HasPrefix(ct, "text/") && isSVG(data) {
			return MimeSVG, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ct)
	}
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Decode parses a data: URL produced by Read into an image at its natural
// size. SVG payloads are rasterized at their viewBox size, scaled down to fit
// svgMaxEdge.
func Decode(src string) (image.Image, error) {
	mime, data, err := parseDataURL(src)
	if err != nil {
		return nil, err
	}
	return decode(mime, data)
}

// DecodeSized decodes src and returns it scaled to exactly width x height.
// SVGs are rasterized straight at the target size.
func DecodeSized(src string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid target size %dx%d", ErrDecode, width, height)
	}
	if width*height > MaxPixels {
		return nil, fmt.Errorf("%w: target %dx%d", ErrTooManyPixels, width, height)
	}
	mime, data, err := parseDataURL(src)
	if err != nil {
		return nil, err
	}
	if mime == MimeSVG {
		return rasterizeSVG(data, width, height)
	}
	img, err := decode(mime, data)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}

func decode(mime string, data []byte) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch mime {
	case MimePNG:
		if err := checkPixels(png.DecodeConfig, data); err != nil {
			return nil, err
		}
		img, err = png.Decode(bytes.NewReader(data))
	case MimeJPEG:
		if err := checkPixels(jpeg.DecodeConfig, data); err != nil {
			return nil, err
		}
		img, err = jpeg.Decode(bytes.NewReader(data))
	case MimeSVG:
		w, h, serr := svgSize(data)
		if serr != nil {
			return nil, serr
		}
		return rasterizeSVG(data, w, h)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func checkPixels(config func(io.Reader) (image.Config, error), data []byte) error {
	cfg, err := config(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrDecode)
	}
	if cfg.Width > MaxPixels/cfg.Height {
		return fmt.Errorf("%w: %dx%d pixels", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return nil
}

const (
	// svgFallbackEdge is used for SVGs that declare no usable viewBox.
	svgFallbackEdge = 200
	// svgMaxEdge caps the natural raster size of an SVG. Drawing always
	// goes through DecodeSized, so this only bounds validation work.
	svgMaxEdge = 200
)

func svgSize(data []byte) (int, int, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if !(w >= 1 && h >= 1) {
		return svgFallbackEdge, svgFallbackEdge, nil
	}
	if long := max(w, h); long > svgMaxEdge {
		scale := svgMaxEdge / long
		w, h = max(1, w*scale), max(1, h*scale)
	}
	return int(w), int(h), nil
}

func rasterizeSVG(data []byte, width, height int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}

func parseDataURL(src string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URL", ErrDecode)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URL", ErrDecode)
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		data = []byte(s)
	}

	switch mime {
	case MimePNG, MimeJPEG, MimeSVG:
		return mime, data, nil
	case "image/jpg":
		return MimeJPEG, data, nil
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
}
