// Package pages renders full HTML documents.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrfusion/web/components"
	"github.com/cristianadrielbraun/qrfusion/web/components/ui/markup"
)

const title = "QR Fusion Studio"

// toastScript removes toasts that carry a data-duration once it elapses.
const toastScript = `<script>
document.addEventListener("htmx:load", function (e) {
  e.detail.elt.querySelectorAll("[data-duration]").forEach(function (el) {
    setTimeout(function () { el.remove(); }, parseInt(el.dataset.duration, 10));
  });
});
</script>`

// HomePage is the configurator page.
func HomePage(v components.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := markup.NewWriter(out)
		w.Raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		w.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.Printf(`<title>%s</title>`, title)
		w.Raw(`<meta name="description" content="Design a styled QR code with colors, frame and logo, then download it as PNG.">`)
		w.Raw(`<script src="https://cdn.tailwindcss.com"></script>`)
		w.Raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		w.Raw(toastScript)
		w.Raw(`</head><body class="min-h-screen bg-gray-50 text-gray-900">`)
		w.Printf(`<main class="mx-auto max-w-6xl px-4 py-10"><h1 class="mb-8 text-2xl font-bold">%s</h1>`, title)
		w.Render(ctx, components.Configurator(v))
		w.Raw(`</main></body></html>`)
		return w.Err()
	})
}
