package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrfusion/internal/logo"
	"github.com/cristianadrielbraun/qrfusion/internal/metrics"
	"github.com/cristianadrielbraun/qrfusion/internal/render"
	"github.com/cristianadrielbraun/qrfusion/internal/session"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
	"github.com/cristianadrielbraun/qrfusion/web/components"
	"github.com/cristianadrielbraun/qrfusion/web/pages"
)

func renderHTML(c *gin.Context, status int, comp templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := comp.Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// view composes the session's current snapshot for display. Rendering
// problems (empty data, capacity exceeded) become part of the view.
func (h *Handler) view(s *session.Session) components.View {
	snap := s.Settings()
	if !snap.Exportable() {
		return components.NewView(snap, nil)
	}
	p, err := s.Preview()
	if err != nil {
		h.log.Debugw("preview not renderable", "session", s.ID, "error", err)
		return components.NewView(snap, errors.Unwrap(err))
	}
	return components.NewView(p.Settings, nil)
}

// Home renders the configurator page.
func (h *Handler) Home(c *gin.Context) {
	renderHTML(c, http.StatusOK, pages.HomePage(h.view(sessionOf(c))))
}

// UpdateSetting applies one field/value pair and returns the refreshed
// preview. Controls post their value under the field's own name; a plain
// "value" key is accepted for API clients.
func (h *Handler) UpdateSetting(c *gin.Context) {
	s := sessionOf(c)
	field := settings.Field(c.PostForm("field"))
	raw, ok := c.GetPostForm(string(field))
	if !ok {
		raw = c.PostForm("value")
	}
	u, err := settings.Sanitize(field, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Apply(u)
	h.log.Debugw("setting applied", "session", s.ID, "field", field)
	renderHTML(c, http.StatusOK, components.SettingsResponse(h.view(s)))
}

// Reset restores the default settings.
func (h *Handler) Reset(c *gin.Context) {
	s := sessionOf(c)
	s.Reset()
	renderHTML(c, http.StatusOK, components.Configurator(h.view(s)))
}

// UploadLogo reads the multipart "logo" file into the session. An empty file
// field clears the logo.
func (h *Handler) UploadLogo(c *gin.Context) {
	s := sessionOf(c)
	fh, err := c.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) || (err == nil && fh.Size == 0) {
		s.RemoveLogo()
		renderHTML(c, http.StatusOK, components.Configurator(h.view(s)))
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Errorw("open uploaded logo", "session", s.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	res := <-s.LoadLogo(f, h.cfg.Logo.MaxBytes)
	_ = f.Close()

	v := h.view(s)
	switch {
	case res.Err == nil, errors.Is(res.Err, session.ErrSuperseded):
	case errors.Is(res.Err, logo.ErrTooManyPixels):
		v = v.WithNotice(errorToast("Logo not loaded", "The image dimensions are too large."))
	case errors.Is(res.Err, logo.ErrTooLarge):
		v = v.WithNotice(errorToast("Logo not loaded",
			fmt.Sprintf("The file is larger than %d KiB.", max(1, h.cfg.Logo.MaxBytes>>10))))
	case errors.Is(res.Err, logo.ErrUnsupported):
		v = v.WithNotice(errorToast("Logo not loaded", "Use a PNG, JPEG or SVG image."))
	default:
		v = v.WithNotice(errorToast("Logo not loaded", "The image could not be decoded."))
	}
	renderHTML(c, http.StatusOK, components.Configurator(v))
}

// RemoveLogo clears the logo but keeps its sizing.
func (h *Handler) RemoveLogo(c *gin.Context) {
	s := sessionOf(c)
	s.RemoveLogo()
	renderHTML(c, http.StatusOK, components.Configurator(h.view(s)))
}

// PreviewImage serves the symbol surface of the current composition.
func (h *Handler) PreviewImage(c *gin.Context) {
	s := sessionOf(c)
	p, err := s.Preview()
	if errors.Is(err, render.ErrEmptyData) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, p.Surface.Image()); err != nil {
		h.log.Errorw("encode preview", "session", s.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode preview"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Export downloads the composed image as a PNG attachment.
func (h *Handler) Export(c *gin.Context) {
	s := sessionOf(c)
	if !s.Settings().Exportable() {
		metrics.Exports.WithLabelValues(metrics.ResultRejected).Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "Nothing to export, enter some content first"})
		return
	}
	p, err := s.Preview()
	if err != nil {
		metrics.Exports.WithLabelValues(metrics.ResultError).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	img, err := render.Export(p)
	if err != nil {
		// No partial file is ever sent.
		metrics.Exports.WithLabelValues(metrics.ResultAborted).Inc()
		h.log.Errorw("export aborted", "session", s.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		metrics.Exports.WithLabelValues(metrics.ResultError).Inc()
		h.log.Errorw("encode export", "session", s.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	metrics.Exports.WithLabelValues(metrics.ResultOK).Inc()
	h.log.Infow("exported", "session", s.ID, "edge", p.Layout.Edge, "bytes", buf.Len())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.cfg.Export.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
