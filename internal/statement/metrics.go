package statement

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zombor/statement-extractor/internal/acquire"
	"github.com/zombor/statement-extractor/internal/extract"
	"github.com/zombor/statement-extractor/internal/pipeline"
)

// Metrics holds the Prometheus metrics for statement processing
type Metrics struct {
	registry *prometheus.Registry

	StatementsTotal       *prometheus.CounterVec
	ProcessingDuration    prometheus.Histogram
	OCRFallbacksTotal     prometheus.Counter
	OCRPagesTotal         prometheus.Counter
	FieldConfidenceTotal  *prometheus.CounterVec
	TransactionsExtracted prometheus.Counter
}

// NewMetrics creates the metrics on their own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		StatementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_extractor_statements_total",
				Help: "Total number of uploaded statements by outcome",
			},
			[]string{"outcome"},
		),
		ProcessingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statement_extractor_processing_duration_seconds",
				Help:    "Time from upload to stored extraction result",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		OCRFallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_extractor_ocr_fallbacks_total",
				Help: "Total number of documents classified as scanned",
			},
		),
		OCRPagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_extractor_ocr_pages_total",
				Help: "Total number of pages whose text came from OCR",
			},
		),
		FieldConfidenceTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_extractor_field_confidence_total",
				Help: "Extracted fields by field and confidence tier; misses count as not_found",
			},
			[]string{"field", "confidence"},
		),
		TransactionsExtracted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_extractor_transactions_total",
				Help: "Total number of transactions extracted",
			},
		),
	}
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRejected counts an upload that could not be processed
func (m *Metrics) RecordRejected() {
	m.StatementsTotal.WithLabelValues("rejected").Inc()
}

// RecordProcessed records a completed extraction
func (m *Metrics) RecordProcessed(r pipeline.ExtractionResult, doc acquire.Document, duration time.Duration) {
	m.StatementsTotal.WithLabelValues("processed").Inc()
	m.ProcessingDuration.Observe(duration.Seconds())

	if doc.State != acquire.StateDigitalOnly {
		m.OCRFallbacksTotal.Inc()
	}
	m.OCRPagesTotal.Add(float64(doc.OCRPages()))

	m.recordField("card_last4", r.CardLast4 != nil, r.CardLast4Confidence)
	m.recordField("statement_date", r.StatementDate != nil, r.StatementDateConfidence)
	m.recordField("billing_period", r.BillingPeriod != nil, r.BillingPeriodConfidence)
	m.recordField("total_balance", r.TotalBalance != nil, r.TotalBalanceConfidence)
	m.TransactionsExtracted.Add(float64(len(r.Transactions)))
}

func (m *Metrics) recordField(field string, found bool, c extract.Confidence) {
	label := "not_found"
	if found {
		label = c.String()
	}
	m.FieldConfidenceTotal.WithLabelValues(field, label).Inc()
}
