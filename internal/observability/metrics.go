package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcomes recorded in WebhookRequests.
const (
	OutcomeBridged       = "bridged"
	OutcomeNoCaller      = "no_caller"
	OutcomeProviderError = "provider_error"
	OutcomeRenderError   = "render_error"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	WebhookRequests    *prometheus.CounterVec
	InFlightSessions   prometheus.Gauge
	ProviderErrors     *prometheus.CounterVec
	ProviderLatency    prometheus.Histogram
	RateLimitedRequest prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		WebhookRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Inbound call webhooks by outcome.",
		}, []string{"outcome"}),
		InFlightSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_requests_in_flight",
			Help:      "Session-creation calls currently waiting on the provider.",
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider errors by provider and failure kind.",
		}, []string{"provider", "kind"}),
		ProviderLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_create_latency_ms",
			Help:      "Latency of session-creation calls in milliseconds.",
			Buckets:   []float64{100, 200, 300, 500, 750, 1000, 2000, 5000, 10000},
		}),
		RateLimitedRequest: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_rate_limited_total",
			Help:      "Inbound webhooks rejected by the per-IP rate limiter.",
		}),
	}
}

func (m *Metrics) ObserveProviderLatency(d time.Duration) {
	m.ProviderLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
