package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business Metrics
	WithdrawalsInitiated    *prometheus.CounterVec
	WebhooksReceived        *prometheus.CounterVec
	TransactionsFinalized   *prometheus.CounterVec
	ReconciliationAnomalies *prometheus.CounterVec
	SweepQueriesTotal       *prometheus.CounterVec

	// Validation Metrics
	ValidationErrors   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "wallet_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		WithdrawalsInitiated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_withdrawals_initiated_total",
				Help: "Total number of withdrawal initiations by payout rail and outcome",
			},
			[]string{"method", "outcome"},
		),
		WebhooksReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_disbursement_webhooks_total",
				Help: "Total number of disbursement webhook deliveries by outcome",
			},
			[]string{"outcome"},
		),
		TransactionsFinalized: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_transactions_finalized_total",
				Help: "Total number of withdrawal transactions reaching a terminal status",
			},
			[]string{"status"},
		),
		ReconciliationAnomalies: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_reconciliation_anomalies_total",
				Help: "Webhook or sweep conditions that need operator follow-up",
			},
			[]string{"reason"},
		),
		SweepQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_sweep_status_queries_total",
				Help: "Gateway status queries issued by the pending sweep",
			},
			[]string{"result"},
		),

		ValidationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_validation_errors_total",
				Help: "Total number of validation errors",
			},
			[]string{"field", "tag"},
		),
		ValidationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_validation_duration_seconds",
				Help:    "Duration of validation operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"endpoint"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordWithdrawalInitiated(method, outcome string) {
	m.WithdrawalsInitiated.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) RecordWebhook(outcome string) {
	m.WebhooksReceived.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordFinalized(status string) {
	m.TransactionsFinalized.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAnomaly(reason string) {
	m.ReconciliationAnomalies.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordSweepQuery(result string) {
	m.SweepQueriesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordValidationError(field, tag string) {
	m.ValidationErrors.WithLabelValues(field, tag).Inc()
}

func (m *Metrics) RecordValidationDuration(endpoint string, duration time.Duration) {
	m.ValidationDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
