package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Exports.WithLabelValues(ResultOK))
	Exports.WithLabelValues(ResultOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Exports.WithLabelValues(ResultOK)))

	SessionsActive.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(SessionsActive))
}

func TestHandler(t *testing.T) {
	Renders.WithLabelValues(ResultError).Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `qrfusion_renders_total{result="error"}`)
	assert.Contains(t, string(body), "qrfusion_sessions_active")
	assert.Contains(t, string(body), "go_goroutines")
}
