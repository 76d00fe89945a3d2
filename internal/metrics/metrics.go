// Package metrics exposes Prometheus counters for renders, exports, logo
// uploads and live sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every qrfusion collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	Renders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrfusion",
		Name:      "renders_total",
		Help:      "QR symbol renders by result.",
	}, []string{"result"})

	Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrfusion",
		Name:      "exports_total",
		Help:      "Image exports by result.",
	}, []string{"result"})

	LogoUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrfusion",
		Name:      "logo_uploads_total",
		Help:      "Logo uploads by result.",
	}, []string{"result"})

	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "qrfusion",
		Name:      "sessions_active",
		Help:      "Sessions currently held in memory.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		Renders, Exports, LogoUploads, SessionsActive,
	)
}

// Result label values.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
	ResultAborted  = "aborted"
)

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
