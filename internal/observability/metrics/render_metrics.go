package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RenderMetrics tracks invoice document generation outcomes.
type RenderMetrics struct {
	renderDuration *prometheus.HistogramVec
	rendersTotal   *prometheus.CounterVec
	qrFallbacks    prometheus.Counter
	documentBytes  prometheus.Histogram
}

var (
	renderMetricsOnce sync.Once
	renderMetrics     *RenderMetrics
)

func Render() *RenderMetrics {
	return RenderWithConfig(Config{})
}

func RenderWithConfig(cfg Config) *RenderMetrics {
	renderMetricsOnce.Do(func() {
		renderMetrics = newRenderMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return renderMetrics
}

func ResetRenderMetricsForTest() {
	renderMetricsOnce = sync.Once{}
	renderMetrics = nil
}

func newRenderMetrics(registerer prometheus.Registerer, cfg Config) *RenderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "faktura"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	renderDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "faktura_invoice_render_duration_seconds",
			Help:        "Time spent generating a single invoice document.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"invoice_type", "outcome"},
	)

	rendersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "faktura_invoice_renders_total",
			Help:        "Invoice documents generated, by type and outcome.",
			ConstLabels: constLabels,
		},
		[]string{"invoice_type", "outcome"},
	)

	qrFallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "faktura_qr_code_fallbacks_total",
			Help:        "Payment slips rendered with the QR placeholder after code generation failed.",
			ConstLabels: constLabels,
		},
	)

	documentBytes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "faktura_invoice_document_bytes",
			Help:        "Size of generated invoice documents.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(4096, 2, 10),
		},
	)

	for _, collector := range []prometheus.Collector{renderDuration, rendersTotal, qrFallbacks, documentBytes} {
		if err := registerer.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := already.ExistingCollector.(type) {
				case *prometheus.HistogramVec:
					if collector == renderDuration {
						renderDuration = existing
					}
				case *prometheus.CounterVec:
					if collector == rendersTotal {
						rendersTotal = existing
					}
				}
				continue
			}
		}
	}

	return &RenderMetrics{
		renderDuration: renderDuration,
		rendersTotal:   rendersTotal,
		qrFallbacks:    qrFallbacks,
		documentBytes:  documentBytes,
	}
}

// ObserveRender records a completed render attempt.
func (m *RenderMetrics) ObserveRender(invoiceType string, outcome string, duration time.Duration, size int) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(invoiceType, outcome).Observe(duration.Seconds())
	m.rendersTotal.WithLabelValues(invoiceType, outcome).Inc()
	if size > 0 {
		m.documentBytes.Observe(float64(size))
	}
}

// ObserveQRFallback records a payment slip that fell back to the placeholder.
func (m *RenderMetrics) ObserveQRFallback() {
	if m == nil {
		return
	}
	m.qrFallbacks.Inc()
}
