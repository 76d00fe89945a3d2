package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrfusion/internal/config"
	"github.com/cristianadrielbraun/qrfusion/internal/metrics"
	"github.com/cristianadrielbraun/qrfusion/internal/session"
)

// Handler carries the dependencies of the HTTP handlers.
type Handler struct {
	store   *session.Store
	cfg     *config.Config
	log     *zap.SugaredLogger
	limiter *clientLimiters
}

// New returns a Handler backed by store.
func New(store *session.Store, cfg *config.Config, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		store:   store,
		cfg:     cfg,
		log:     log,
		limiter: newClientLimiters(cfg.Limits.PerSecond, cfg.Limits.Burst),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/sitemap.xml", h.SitemapXML)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.POST("/htmx/toast", h.GenericToast)
	}

	sess := r.Group("/", h.Sessions())
	{
		sess.GET("/", h.Home)
		sess.POST("/api/settings", h.UpdateSetting)
		sess.POST("/api/reset", h.Reset)
		sess.POST("/api/logo", h.limit(), h.UploadLogo)
		sess.DELETE("/api/logo", h.RemoveLogo)
		sess.GET("/api/preview.png", h.PreviewImage)
		sess.GET("/api/export", h.limit(), h.Export)
	}
}

const sessionKey = "qrfusion.session"

// Sessions resolves the caller's session from its cookie, starting a new one
// when the cookie is missing or the session expired. The cookie is re-issued
// on every request so its lifetime slides along with the server-side TTL.
func (h *Handler) Sessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(h.cfg.Session.Cookie)
		s, _ := h.store.GetOrCreate(id)
		maxAge := int(h.cfg.Session.TTL / time.Second)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cfg.Session.Cookie, s.ID, maxAge, "/", "", c.Request.TLS != nil, true)
		c.Set(sessionKey, s)
		c.Next()
	}
}

func sessionOf(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// limit rejects requests over the configured per-client rate with 429.
// Clients are keyed by address since a new session is only a dropped cookie
// away.
func (h *Handler) limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again shortly"})
			return
		}
		c.Next()
	}
}

// Healthz reports liveness along with the number of live sessions.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.store.Len()})
}

// SitemapXML serves a minimal sitemap for the site.
func (h *Handler) SitemapXML(c *gin.Context) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	scheme := "https"
	host := c.Request.Host
	if xf := c.Request.Header.Get("X-Forwarded-Proto"); xf != "" {
		scheme = xf
	} else if c.Request.TLS == nil && isLocal(host) {
		scheme = "http"
	}
	xml := "" +
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n" +
		"  <url>\n" +
		"    <loc>" + scheme + "://" + host + "/</loc>\n" +
		"    <changefreq>monthly</changefreq>\n" +
		"    <priority>1.0</priority>\n" +
		"  </url>\n" +
		"</urlset>\n"
	c.String(http.StatusOK, xml)
}

func isLocal(host string) bool {
	return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1") || strings.HasPrefix(host, "[::1]")
}
