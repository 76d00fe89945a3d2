package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrfusion/internal/metrics"
	"github.com/cristianadrielbraun/qrfusion/internal/render"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
)

// settingsFromQuery applies every known field present in the query on top of
// the defaults, except that data starts out empty. "url" is accepted as an
// alias for "data".
func settingsFromQuery(c *gin.Context) (settings.Settings, error) {
	s := settings.Default()
	s.Data = ""
	if raw, ok := c.GetQuery("url"); ok {
		u, _ := settings.Sanitize(settings.FieldData, strings.TrimSpace(raw))
		s = s.With(u)
	}
	for _, f := range settings.Fields {
		raw, ok := c.GetQuery(string(f))
		if !ok {
			continue
		}
		u, err := settings.Sanitize(f, raw)
		if err != nil {
			return s, err
		}
		s = s.With(u)
	}
	return s, nil
}

// QRCodeHandler renders a composed QR code straight from query parameters,
// without a session. Out-of-range numbers are clamped.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	s, err := settingsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.Exportable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data parameter is required"})
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "png"))
	if format == "jpeg" {
		format = "jpg"
	}
	if format != "jpg" {
		format = "png"
	}

	p, err := render.Compose(s)
	if err != nil {
		metrics.Renders.WithLabelValues(metrics.ResultError).Inc()
		status := http.StatusUnprocessableEntity
		if errors.Is(err, render.ErrEmptyData) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	metrics.Renders.WithLabelValues(metrics.ResultOK).Inc()

	img, err := render.Export(p)
	if err != nil {
		h.log.Errorw("stateless export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create QR code"})
		return
	}

	var buf bytes.Buffer
	contentType := "image/png"
	if format == "jpg" {
		contentType = "image/jpeg"
		err = render.EncodeJPEG(&buf, img, p.Layout.Background)
	} else {
		err = render.EncodePNG(&buf, img)
	}
	if err != nil {
		h.log.Errorw("encode image", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode image"})
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
