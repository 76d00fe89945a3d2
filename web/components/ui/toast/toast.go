// Package toast renders transient notification banners for HTMX swaps.
package toast

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrfusion/web/components/ui/markup"
)

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

type Position string

const (
	PositionTopRight     Position = "top-right"
	PositionTopLeft      Position = "top-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
)

type Props struct {
	ID            string
	Class         string
	Title         string
	Description   string
	Variant       Variant
	Position      Position
	Duration      int // milliseconds, 0 keeps the toast until dismissed
	Dismissible   bool
	ShowIndicator bool
	Icon          bool
}

var variantClasses = map[Variant]string{
	VariantDefault: "border-gray-200 bg-white text-gray-900",
	VariantSuccess: "border-green-200 bg-green-50 text-green-900",
	VariantError:   "border-red-200 bg-red-50 text-red-900",
	VariantWarning: "border-amber-200 bg-amber-50 text-amber-900",
	VariantInfo:    "border-blue-200 bg-blue-50 text-blue-900",
}

var positionClasses = map[Position]string{
	PositionTopRight:     "top-4 right-4",
	PositionTopLeft:      "top-4 left-4",
	PositionBottomRight:  "bottom-4 right-4",
	PositionBottomLeft:   "bottom-4 left-4",
	PositionBottomCenter: "bottom-4 left-1/2 -translate-x-1/2",
}

var icons = map[Variant]string{
	VariantSuccess: "&#10003;",
	VariantError:   "&#9888;",
	VariantWarning: "&#9888;",
	VariantInfo:    "&#8505;",
}

// Classes resolves the container classes for p.
func (p Props) Classes() string {
	variant, ok := variantClasses[p.Variant]
	if !ok {
		variant = variantClasses[VariantDefault]
	}
	position, ok := positionClasses[p.Position]
	if !ok {
		position = positionClasses[PositionBottomRight]
	}
	return twmerge.Merge(
		"fixed z-50 flex w-80 items-start gap-3 rounded-lg border p-4 shadow-lg",
		variant, position, p.Class,
	)
}

// Toast renders p. A positive Duration lets the page script remove the toast
// after that many milliseconds.
func Toast(p Props) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		id := p.ID
		if id == "" {
			id = "toast"
		}
		w := markup.NewWriter(out)
		w.Printf(`<div id="%s" role="status" class="%s" data-variant="%s"`,
			markup.Esc(id), markup.Esc(p.Classes()), markup.Esc(string(p.Variant)))
		if p.Duration > 0 {
			w.Printf(` data-duration="%d"`, p.Duration)
		}
		w.Raw(">")
		if icon, ok := icons[p.Variant]; ok && p.Icon {
			w.Printf(`<span aria-hidden="true" class="text-lg leading-none">%s</span>`, icon)
		}
		w.Raw(`<div class="flex-1">`)
		if p.Title != "" {
			w.Printf(`<p class="text-sm font-semibold">%s</p>`, markup.Esc(p.Title))
		}
		if p.Description != "" {
			w.Printf(`<p class="mt-1 text-sm opacity-90">%s</p>`, markup.Esc(p.Description))
		}
		if p.ShowIndicator && p.Duration > 0 {
			w.Raw(`<div class="mt-2 h-1 w-full animate-pulse rounded bg-current opacity-30"></div>`)
		}
		w.Raw(`</div>`)
		if p.Dismissible {
			w.Raw(`<button type="button" aria-label="Close" class="text-sm opacity-60 hover:opacity-100" onclick="this.parentElement.remove()">&times;</button>`)
		}
		w.Raw(`</div>`)
		return w.Err()
	})
}
