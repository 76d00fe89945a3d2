package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrfusion/internal/config"
	"github.com/cristianadrielbraun/qrfusion/internal/logo"
	"github.com/cristianadrielbraun/qrfusion/internal/session"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Addr: ":0", ShutdownTimeout: time.Second},
		Session: config.SessionConfig{TTL: time.Hour, Cookie: "qrfusion_session"},
		Logo:    config.LogoConfig{MaxBytes: logo.DefaultMaxBytes},
		Export:  config.ExportConfig{Filename: "qr-fusion-code.png"},
		Limits:  config.LimitsConfig{PerSecond: 1000, Burst: 1000},
	}
}

type testClient struct {
	t      *testing.T
	engine *gin.Engine
	store  *session.Store
	cookie *http.Cookie
}

func newTestClient(t *testing.T, cfg *config.Config) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := session.NewStore(0, nil)
	t.Cleanup(store.Close)

	r := gin.New()
	New(store, cfg, nil).Register(r)
	return &testClient{t: t, engine: r, store: store}
}

func (tc *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	tc.t.Helper()
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}
	w := httptest.NewRecorder()
	tc.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "qrfusion_session" {
			tc.cookie = c
		}
	}
	return w
}

func (tc *testClient) get(path string) *httptest.ResponseRecorder {
	return tc.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (tc *testClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

func (tc *testClient) set(field settings.Field, value string) *httptest.ResponseRecorder {
	return tc.postForm("/api/settings", url.Values{"field": {string(field)}, "value": {value}})
}

func (tc *testClient) uploadLogo(name string, content []byte) *httptest.ResponseRecorder {
	tc.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("logo", name)
	require.NoError(tc.t, err)
	_, err = fw.Write(content)
	require.NoError(tc.t, err)
	require.NoError(tc.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return tc.do(req)
}

// current returns the settings of the client's session.
func (tc *testClient) current() settings.Settings {
	tc.t.Helper()
	require.NotNil(tc.t, tc.cookie, "no session cookie yet")
	s, ok := tc.store.Get(tc.cookie.Value)
	require.True(tc.t, ok)
	return s.Settings()
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHome(t *testing.T) {
	tc := newTestClient(t, testConfig())
	w := tc.get("/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.NotNil(t, tc.cookie)
	assert.True(t, tc.cookie.HttpOnly)

	body := w.Body.String()
	assert.Contains(t, body, `id="configurator"`)
	assert.Contains(t, body, `href="/api/export"`)
	assert.Contains(t, body, "25/2000 characters")
	assert.Contains(t, body, "padding:16px;border-radius:24px;border:none;background-color:#ffffff")

	// Same session on the next request.
	id := tc.cookie.Value
	tc.get("/")
	assert.Equal(t, id, tc.cookie.Value)
	assert.Equal(t, 1, tc.store.Len())
}

func TestUpdateSetting_Clamps(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")

	w := tc.set(settings.FieldSize, "5000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="preview-panel"`)
	assert.Contains(t, w.Body.String(), `id="data-counter" class="text-xs text-gray-500" hx-swap-oob="true"`)
	assert.Equal(t, 1000, tc.current().Size)

	tc.set(settings.FieldPadding, "abc")
	assert.Equal(t, 0, tc.current().Padding)
}

func TestUpdateSetting_Rejects(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")

	assert.Equal(t, http.StatusBadRequest, tc.set("logoSrc", "data:image/png;base64,AAAA").Code)
	assert.Equal(t, http.StatusBadRequest, tc.set("nope", "1").Code)
	assert.Equal(t, http.StatusBadRequest, tc.set(settings.FieldLevel, "Z").Code)
	assert.Equal(t, settings.Default(), tc.current())
}

func TestUpdateSetting_ReadsOwnField(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")

	// A body carrying other controls' values must not leak into the field.
	w := tc.postForm("/api/settings", url.Values{
		"field":   {string(settings.FieldSize)},
		"data":    {"https://example.com"},
		"level":   {"H"},
		"fgColor": {"#1A202C"},
		"size":    {"400"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 400, tc.current().Size)
	assert.Equal(t, settings.DefaultData, tc.current().Data)

	w = tc.postForm("/api/settings", url.Values{
		"field": {string(settings.FieldLevel)},
		"data":  {"https://example.com"},
		"level": {"Q"},
		"size":  {"400"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, settings.LevelQuartile, tc.current().Level)

	// The generic key still works for clients that post field/value pairs.
	require.Equal(t, http.StatusOK, tc.set(settings.FieldPadding, "12").Code)
	assert.Equal(t, 12, tc.current().Padding)
}

func TestUpdateSetting_EmptyDataDisablesExport(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")

	w := tc.set(settings.FieldData, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<button id="export" type="button" disabled`)

	assert.Equal(t, http.StatusConflict, tc.get("/api/export").Code)
	assert.Equal(t, http.StatusNoContent, tc.get("/api/preview.png").Code)
}

func TestExport_Default(t *testing.T) {
	tc := newTestClient(t, testConfig())
	w := tc.get("/api/export")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-fusion-code.png"`, w.Header().Get("Content-Disposition"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 312, 312), img.Bounds())
}

func TestExport_WithBorder(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	tc.set(settings.FieldBorderWidth, "5")

	w := tc.get("/api/export")
	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 322, img.Bounds().Dx())
}

func TestPreviewImage(t *testing.T) {
	tc := newTestClient(t, testConfig())
	w := tc.get("/api/preview.png")

	require.Equal(t, http.StatusOK, w.Code)
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 280, img.Bounds().Dx())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestLogo_UploadRemoveKeepsSizing(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	tc.set(settings.FieldLogoWidth, "80")
	tc.set(settings.FieldLogoHeight, "40")

	w := tc.uploadLogo("logo.png", pngBytes(t, 16, 16, color.Black))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Remove logo")
	first := tc.current()
	require.True(t, first.HasLogo())

	req := httptest.NewRequest(http.MethodDelete, "/api/logo", nil)
	w = tc.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	removed := tc.current()
	assert.False(t, removed.HasLogo())
	assert.Equal(t, 80, removed.LogoWidth)
	assert.Equal(t, 40, removed.LogoHeight)

	tc.uploadLogo("other.png", pngBytes(t, 16, 16, color.White))
	second := tc.current()
	assert.True(t, second.HasLogo())
	assert.NotEqual(t, first.LogoSrc, second.LogoSrc)
	assert.Equal(t, 80, second.LogoWidth)
	assert.Equal(t, 40, second.LogoHeight)
}

func TestLogo_RejectedShowsToast(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	tc.uploadLogo("logo.png", pngBytes(t, 16, 16, color.Black))
	prev := tc.current().LogoSrc

	w := tc.uploadLogo("notes.txt", []byte("just some text, not an image"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logo not loaded")
	assert.Contains(t, w.Body.String(), "Use a PNG, JPEG or SVG image.")
	assert.Equal(t, prev, tc.current().LogoSrc)
}

func TestLogo_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Logo.MaxBytes = 16
	tc := newTestClient(t, cfg)
	tc.get("/")

	w := tc.uploadLogo("big.png", pngBytes(t, 64, 64, color.Black))
	assert.Contains(t, w.Body.String(), "Logo not loaded")
	assert.False(t, tc.current().HasLogo())
}

func TestLogo_DimensionsTooLarge(t *testing.T) {
	prev := logo.MaxPixels
	logo.MaxPixels = 16 * 16
	t.Cleanup(func() { logo.MaxPixels = prev })

	tc := newTestClient(t, testConfig())
	tc.get("/")

	w := tc.uploadLogo("big.png", pngBytes(t, 64, 64, color.White))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The image dimensions are too large.")
	assert.False(t, tc.current().HasLogo())
}

func TestLogo_EmptyFileClears(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	tc.uploadLogo("logo.png", pngBytes(t, 16, 16, color.Black))
	require.True(t, tc.current().HasLogo())

	w := tc.uploadLogo("empty.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, tc.current().HasLogo())
}

func TestLogo_LowLevelTip(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	tc.uploadLogo("logo.png", pngBytes(t, 16, 16, color.Black))

	w := tc.set(settings.FieldLevel, "L")
	assert.Contains(t, w.Body.String(), "for logos use error correction H or Q")

	w = tc.set(settings.FieldLevel, "Q")
	assert.NotContains(t, w.Body.String(), "for logos use error correction H or Q")
}

func TestReset(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	tc.set(settings.FieldSize, "500")
	tc.set(settings.FieldData, "hello")
	tc.uploadLogo("logo.png", pngBytes(t, 16, 16, color.Black))

	w := tc.postForm("/api/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="configurator"`)
	assert.Equal(t, settings.Default(), tc.current())
}

func TestExport_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Limits = config.LimitsConfig{PerSecond: 0.001, Burst: 1}
	tc := newTestClient(t, cfg)

	assert.Equal(t, http.StatusOK, tc.get("/api/export").Code)
	assert.Equal(t, http.StatusTooManyRequests, tc.get("/api/export").Code)
}

func TestExport_RateLimitedPerClient(t *testing.T) {
	cfg := testConfig()
	cfg.Limits = config.LimitsConfig{PerSecond: 0.001, Burst: 1}
	tc := newTestClient(t, cfg)
	other := &testClient{t: t, engine: tc.engine, store: tc.store}

	export := func(c *testClient, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
		req.RemoteAddr = addr
		return c.do(req).Code
	}
	assert.Equal(t, http.StatusOK, export(tc, "198.51.100.1:4000"))
	assert.Equal(t, http.StatusTooManyRequests, export(tc, "198.51.100.1:4000"))
	assert.Equal(t, http.StatusOK, export(other, "198.51.100.2:4000"))
}

func TestSessions_CookieRefreshed(t *testing.T) {
	tc := newTestClient(t, testConfig())
	tc.get("/")
	require.NotNil(t, tc.cookie)
	id := tc.cookie.Value

	req := httptest.NewRequest(http.MethodGet, "/api/preview.png", nil)
	req.AddCookie(&http.Cookie{Name: "qrfusion_session", Value: id})
	w := httptest.NewRecorder()
	tc.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var refreshed *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "qrfusion_session" {
			refreshed = c
		}
	}
	require.NotNil(t, refreshed, "existing session must get its cookie re-issued")
	assert.Equal(t, id, refreshed.Value)
	assert.Equal(t, 3600, refreshed.MaxAge)
	assert.True(t, refreshed.HttpOnly)
	assert.Equal(t, 1, tc.store.Len())
}

func TestQRCodeHandler(t *testing.T) {
	tc := newTestClient(t, testConfig())

	w := tc.get("/api/qr?data=hello&size=100&padding=0&quietZone=4")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	assert.Nil(t, tc.cookie, "stateless endpoint must not start a session")

	w = tc.get("/api/qr?url=example.com&format=jpeg&size=9999")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	img, err = jpeg.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 1032, img.Bounds().Dx())
}

func TestQRCodeHandler_BadInput(t *testing.T) {
	tc := newTestClient(t, testConfig())

	assert.Equal(t, http.StatusBadRequest, tc.get("/api/qr").Code)
	assert.Equal(t, http.StatusBadRequest, tc.get("/api/qr?data=").Code)

	w := tc.get("/api/qr?data=x&level=Z")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestMisc(t *testing.T) {
	tc := newTestClient(t, testConfig())

	w := tc.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	req.Host = "localhost:8080"
	w = tc.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<loc>http://localhost:8080/</loc>")

	w = tc.get("/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qrfusion_sessions_active")

	w = tc.postForm("/api/htmx/toast", url.Values{"title": {"Saved <b>"}, "variant": {"error"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Saved &lt;b&gt;")
	assert.Contains(t, w.Body.String(), `data-variant="error"`)
}
