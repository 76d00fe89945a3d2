package components

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrfusion/web/components/ui/markup"
	"github.com/cristianadrielbraun/qrfusion/web/components/ui/toast"
)

// PreviewPanel renders the live preview: the layout's box model as inline
// CSS around the symbol image, and the export button.
func PreviewPanel(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		s := v.Settings
		w := markup.NewWriter(out)
		w.Raw(`<div id="preview-panel" class="flex flex-col items-center gap-6">`)
		w.Raw(`<div class="flex min-h-[320px] w-full items-center justify-center overflow-auto rounded-xl bg-gray-100 p-6">`)

		switch {
		case v.PreviewURL != "":
			w.Printf(`<div id="qr-preview" style="%s"><img src="%s" width="%d" height="%d" alt="QR code preview"></div>`,
				markup.Esc(v.Layout.CSS()), markup.Esc(v.PreviewURL), s.Size, s.Size)
		case v.RenderError != "":
			w.Printf(`<p class="text-sm text-red-600">Cannot render this code: %s</p>`, markup.Esc(v.RenderError))
		default:
			w.Raw(`<p class="text-sm text-gray-500">Enter some content to generate a code.</p>`)
		}
		w.Raw(`</div>`)

		w.Printf(`<p class="text-xs text-gray-500">Export size %d &times; %d px</p>`, v.Layout.Edge, v.Layout.Edge)
		exportClass := "inline-flex items-center justify-center rounded-md bg-indigo-600 px-6 py-3 text-sm font-semibold text-white shadow-sm hover:bg-indigo-500"
		if v.PreviewURL != "" {
			w.Printf(`<a id="export" href="/api/export" download class="%s">Download PNG</a>`, exportClass)
		} else {
			w.Printf(`<button id="export" type="button" disabled class="%s">Download PNG</button>`,
				twmerge.Merge(exportClass, "cursor-not-allowed bg-gray-300 hover:bg-gray-300"))
		}
		w.Raw(`</div>`)
		return w.Err()
	})
}

// SettingsResponse is the HTMX response to a single field change: the new
// preview plus out-of-band updates for the hints next to the controls.
func SettingsResponse(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := markup.NewWriter(out)
		w.Render(ctx, PreviewPanel(v))
		w.Render(ctx, Counter(v.Settings, true))
		w.Render(ctx, LogoTip(v.Settings, true))
		return w.Err()
	})
}

// Configurator renders controls and preview side by side, plus the pending
// notice if there is one.
func Configurator(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := markup.NewWriter(out)
		w.Raw(`<div id="configurator" class="grid gap-8 lg:grid-cols-[380px_1fr]">`)
		w.Render(ctx, Controls(v))
		w.Render(ctx, PreviewPanel(v))
		if v.Notice != nil {
			w.Render(ctx, toast.Toast(*v.Notice))
		}
		w.Raw(`</div>`)
		return w.Err()
	})
}
