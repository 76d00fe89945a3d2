// Package markup holds the small HTML writing helpers shared by the
// hand-written templ components.
package markup

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer writes HTML fragments and remembers the first error, so components
// can emit markup without checking every write.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Raw writes s unescaped.
func (w *Writer) Raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// Printf formats into the output. String arguments are not escaped; pass
// them through Esc first.
func (w *Writer) Printf(format string, a ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, a...)
}

// Text writes s HTML-escaped.
func (w *Writer) Text(s string) { w.Raw(templ.EscapeString(s)) }

// Render renders a nested component into the same output.
func (w *Writer) Render(ctx context.Context, c templ.Component) {
	if w.err != nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

// Err is the first write error, if any.
func (w *Writer) Err() error { return w.err }

// Esc escapes s for use in text or attribute values.
func Esc(s string) string { return templ.EscapeString(s) }

// Attr renders name="value" when cond holds.
func Attr(cond bool, name string) string {
	if cond {
		return " " + name
	}
	return ""
}
