package components

import (
	"encoding/json"
	"hash/fnv"
	"strconv"

	"github.com/cristianadrielbraun/qrfusion/internal/render"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
	"github.com/cristianadrielbraun/qrfusion/web/components/ui/toast"
)

// View is everything the configurator page renders from.
type View struct {
	Settings settings.Settings
	Layout   render.Layout

	// PreviewURL points at the symbol image; empty when there is nothing to
	// render.
	PreviewURL  string
	RenderError string

	Notice *toast.Props
}

// NewView builds the view for s. renderErr is the error from composing s, if
// any.
func NewView(s settings.Settings, renderErr error) View {
	v := View{Settings: s, Layout: render.LayoutOf(s)}
	switch {
	case renderErr != nil:
		v.RenderError = renderErr.Error()
	case s.Data != "":
		v.PreviewURL = "/api/preview.png?v=" + Revision(s)
	}
	return v
}

// WithNotice attaches a toast to the view.
func (v View) WithNotice(p toast.Props) View {
	v.Notice = &p
	return v
}

// Revision is a short fingerprint of s, used to bust the preview image cache.
func Revision(s settings.Settings) string {
	b, _ := json.Marshal(s)
	h := fnv.New64a()
	_, _ = h.Write(b)
	return strconv.FormatUint(h.Sum64(), 36)
}
