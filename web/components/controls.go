package components

import (
	"context"
	"io"
	"unicode/utf8"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrfusion/internal/settings"
	"github.com/cristianadrielbraun/qrfusion/web/components/ui/markup"
)

const (
	inputClass   = "w-full rounded-md border border-gray-300 bg-white px-3 py-2 text-sm shadow-sm focus:border-indigo-500 focus:outline-none"
	labelClass   = "mb-1 block text-xs font-medium uppercase tracking-wide text-gray-500"
	sectionClass = "space-y-4 rounded-xl border border-gray-200 bg-white p-5 shadow-sm"
	buttonClass  = "inline-flex items-center justify-center rounded-md px-4 py-2 text-sm font-semibold shadow-sm"
)

// swap attributes shared by every field control. Each control is named after
// its field so a request only ever carries its own value.
func fieldAttrs(f settings.Field, trigger string) string {
	name := markup.Esc(string(f))
	return ` name="` + name + `" hx-post="/api/settings" hx-trigger="` + markup.Esc(trigger) + `"` +
		` hx-vals='{"field":"` + name + `"}' hx-target="#preview-panel" hx-swap="outerHTML"`
}

// Controls renders the settings panel.
func Controls(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		s := v.Settings
		w := markup.NewWriter(out)
		w.Raw(`<div id="controls" class="space-y-6">`)

		section(w, "Content")
		w.Printf(`<label class="%s" for="f-data">Content</label>`, labelClass)
		w.Printf(`<textarea id="f-data" rows="3" maxlength="%d" class="%s"%s>%s</textarea>`,
			settings.MaxDataLength, inputClass, fieldAttrs(settings.FieldData, "input changed delay:250ms"), markup.Esc(s.Data))
		w.Render(ctx, Counter(s, false))
		levelSelect(w, s.Level)
		w.Raw(`</section>`)

		section(w, "Colors")
		colorInput(w, settings.FieldFgColor, "Foreground", s.FgColor)
		colorInput(w, settings.FieldBgColor, "Background", s.BgColor)
		w.Raw(`</section>`)

		section(w, "Sizing &amp; Layout")
		rangeInput(w, settings.FieldSize, "Size", s.Size)
		rangeInput(w, settings.FieldQuietZone, "Quiet zone", s.QuietZone)
		rangeInput(w, settings.FieldPadding, "Padding", s.Padding)
		w.Raw(`</section>`)

		section(w, "Frame &amp; Border")
		rangeInput(w, settings.FieldBorderWidth, "Border width", s.BorderWidth)
		rangeInput(w, settings.FieldBorderRadius, "Corner radius", s.BorderRadius)
		colorInput(w, settings.FieldBorderColor, "Border color", s.BorderColor)
		w.Raw(`</section>`)

		section(w, "Logo")
		w.Printf(`<label class="%s" for="f-logo">Logo image</label>`, labelClass)
		w.Printf(`<input id="f-logo" type="file" name="logo" accept="image/png,image/jpeg,image/svg+xml" class="%s"`+
			` hx-post="/api/logo" hx-encoding="multipart/form-data" hx-trigger="change" hx-target="#configurator" hx-swap="outerHTML">`,
			twmerge.Merge(inputClass, "px-2 py-1"))
		if s.HasLogo() {
			w.Printf(`<button type="button" class="%s" hx-delete="/api/logo" hx-target="#configurator" hx-swap="outerHTML">Remove logo</button>`,
				twmerge.Merge(buttonClass, "bg-white text-red-600 ring-1 ring-red-200 hover:bg-red-50"))
		}
		rangeInput(w, settings.FieldLogoWidth, "Logo width", s.LogoWidth)
		rangeInput(w, settings.FieldLogoHeight, "Logo height", s.LogoHeight)
		w.Printf(`<label class="flex items-center gap-2 text-sm"><input type="checkbox"%s hx-post="/api/settings" hx-trigger="change"`+
			` hx-vals='js:{"field":"%s","value":event.target.checked ? "on" : "off"}' hx-target="#preview-panel" hx-swap="outerHTML">`+
			` Clear modules behind the logo</label>`, markup.Attr(s.LogoExcavate, "checked"), markup.Esc(string(settings.FieldLogoExcavate)))
		w.Render(ctx, LogoTip(s, false))
		w.Raw(`</section>`)

		w.Printf(`<button type="button" class="%s" hx-post="/api/reset" hx-target="#configurator" hx-swap="outerHTML">Reset</button>`,
			twmerge.Merge(buttonClass, "w-full bg-gray-100 text-gray-800 hover:bg-gray-200"))
		w.Raw(`</div>`)
		return w.Err()
	})
}

func section(w *markup.Writer, title string) {
	w.Printf(`<section class="%s"><h2 class="text-sm font-semibold text-gray-900">%s</h2>`, sectionClass, title)
}

func levelSelect(w *markup.Writer, current settings.Level) {
	w.Printf(`<label class="%s" for="f-level">Error correction</label>`, labelClass)
	w.Printf(`<select id="f-level" class="%s"%s>`, inputClass, fieldAttrs(settings.FieldLevel, "change"))
	for _, l := range settings.Levels {
		w.Printf(`<option value="%s"%s>%s</option>`, markup.Esc(string(l)), markup.Attr(l == current, "selected"), markup.Esc(l.Label()))
	}
	w.Raw(`</select>`)
}

func colorInput(w *markup.Writer, f settings.Field, label, value string) {
	id := markup.Esc(string(f))
	w.Printf(`<div><label class="%s" for="f-%s">%s</label>`, labelClass, id, markup.Esc(label))
	w.Printf(`<input id="f-%s" type="color" value="%s" class="%s"%s></div>`,
		id, markup.Esc(value), twmerge.Merge(inputClass, "h-10 p-1"), fieldAttrs(f, "input changed delay:150ms"))
}

func rangeInput(w *markup.Writer, f settings.Field, label string, value int) {
	b, _ := settings.BoundsOf(f)
	id := markup.Esc(string(f))
	w.Printf(`<div><label class="%s" for="f-%s">%s <span class="text-gray-400">%dpx</span></label>`, labelClass, id, markup.Esc(label), value)
	w.Printf(`<input id="f-%s" type="range" min="%d" max="%d" step="1" value="%d" class="w-full accent-indigo-600"%s></div>`,
		id, b.Min, b.Max, value, fieldAttrs(f, "change"))
}

// Counter renders the "n/2000 characters" hint. With oob it replaces the
// existing counter from a response aimed at another target.
func Counter(s settings.Settings, oob bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := markup.NewWriter(out)
		n := utf8.RuneCountInString(s.Data)
		class := "text-xs text-gray-500"
		if n >= settings.MaxDataLength {
			class = twmerge.Merge(class, "text-amber-600")
		}
		w.Printf(`<p id="data-counter" class="%s"%s>%d/%d characters</p>`,
			class, markup.Attr(oob, `hx-swap-oob="true"`), n, settings.MaxDataLength)
		return w.Err()
	})
}

// LogoTip recommends a higher error-correction level while a logo is
// embedded at L or M. It always renders its container so later swaps have a
// target.
func LogoTip(s settings.Settings, oob bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := markup.NewWriter(out)
		w.Printf(`<p id="logo-tip" class="text-xs text-amber-700"%s>`, markup.Attr(oob, `hx-swap-oob="true"`))
		if s.LowLevelForLogo() {
			w.Raw(`Tip: for logos use error correction H or Q so the code stays scannable.`)
		}
		w.Raw(`</p>`)
		return w.Err()
	})
}
