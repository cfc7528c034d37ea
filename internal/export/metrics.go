package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petexport_exports_total",
		Help: "Export runs by strategy and outcome",
	}, []string{"strategy", "status"})

	rowsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petexport_rows_exported_total",
		Help: "Data rows written to CSV by strategy",
	}, []string{"strategy"})

	exportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "petexport_export_duration_seconds",
		Help:    "Wall time of export runs",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"strategy"})

	pageQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petexport_page_queries_total",
		Help: "Bounded page queries issued by paginated fetches",
	})

	cursorReleases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "petexport_cursor_releases_total",
		Help: "Cursor releases by reason (exhausted, closed, abandoned)",
	}, []string{"reason"})

	cursorReleaseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "petexport_cursor_release_errors_total",
		Help: "Cursor releases that returned an error",
	})

	activeExports = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "petexport_active_exports",
		Help: "Export runs currently holding a limiter slot",
	})
)
