package metricsvc

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darasahq/darasa/core/importer"
)

// Collector records bulk-import outcomes as Prometheus metrics.
type Collector struct {
	rowsSucceeded prometheus.Counter
	rowsFailed    prometheus.Counter
	batchRows     prometheus.Histogram
	batchLatency  prometheus.Histogram
}

var _ importer.Metrics = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rowsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darasa_import_rows_succeeded_total",
			Help: "Total number of import rows that succeeded.",
		}),
		rowsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "darasa_import_rows_failed_total",
			Help: "Total number of import rows that failed.",
		}),
		batchRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "darasa_import_batch_rows",
			Help:    "Number of rows per import batch.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		batchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "darasa_import_batch_duration_seconds",
			Help:    "Wall-clock duration of import batches in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.rowsSucceeded,
		c.rowsFailed,
		c.batchRows,
		c.batchLatency,
	)

	return c
}

func (c *Collector) RowSucceeded() {
	c.rowsSucceeded.Inc()
}

func (c *Collector) RowFailed() {
	c.rowsFailed.Inc()
}

func (c *Collector) BatchProcessed(total int, elapsed time.Duration) {
	c.batchRows.Observe(float64(total))
	c.batchLatency.Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler serving the registry for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
