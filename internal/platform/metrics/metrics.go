package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing, which keeps tests free of duplicate
// registration against the default registry.
type Metrics struct {
	SavesDecoded    prometheus.Counter
	SavesEncoded    prometheus.Counter
	DecodeFailures  *prometheus.CounterVec
	EncodeFallbacks prometheus.Counter
	ItemsDecoded    *prometheus.CounterVec
	DecodeDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SavesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "saveedit_saves_decoded_total",
			Help: "Total number of save containers successfully decoded",
		}),
		SavesEncoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "saveedit_saves_encoded_total",
			Help: "Total number of save containers re-encoded for download",
		}),
		DecodeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "saveedit_decode_failures_total",
			Help: "Save container decode failures by reason",
		}, []string{"reason"}),
		EncodeFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "saveedit_item_encode_fallbacks_total",
			Help: "Item edits that could not be applied and kept the original serial",
		}),
		ItemsDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "saveedit_items_decoded_total",
			Help: "Item serials decoded from documents by category",
		}, []string{"category"}),
		DecodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "saveedit_container_decode_duration_seconds",
			Help:    "Latency of container decode operations",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

func (m *Metrics) ObserveDecode(d time.Duration) {
	if m == nil {
		return
	}
	m.SavesDecoded.Inc()
	m.DecodeDuration.Observe(d.Seconds())
}

func (m *Metrics) IncDecodeFailure(reason string) {
	if m == nil {
		return
	}
	m.DecodeFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncSavesEncoded() {
	if m == nil {
		return
	}
	m.SavesEncoded.Inc()
}

func (m *Metrics) IncEncodeFallbacks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EncodeFallbacks.Add(float64(n))
}

func (m *Metrics) IncItemsDecoded(category string) {
	if m == nil {
		return
	}
	m.ItemsDecoded.WithLabelValues(category).Inc()
}
