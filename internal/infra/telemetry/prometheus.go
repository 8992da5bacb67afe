package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"raindropmcp/internal/domain"
)

type PrometheusMetrics struct {
	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	resourceReads    *prometheus.CounterVec
	apiRequests      *prometheus.CounterVec
	apiRequestLength *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "raindropmcp_tool_calls_total",
				Help: "Total number of tool calls by outcome",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "raindropmcp_tool_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"tool", "status"},
		),
		resourceReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "raindropmcp_resource_reads_total",
				Help: "Total number of resource reads by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "raindropmcp_api_requests_total",
				Help: "Total number of Raindrop API requests by status code",
			},
			[]string{"method", "endpoint", "code"},
		),
		apiRequestLength: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "raindropmcp_api_request_duration_seconds",
				Help:    "Latency of Raindrop API requests in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "endpoint"},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolCall(tool string, duration time.Duration, err error) {
	status := statusLabel(err)
	p.toolCalls.WithLabelValues(tool, status).Inc()
	p.toolDuration.WithLabelValues(tool, status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveResourceRead(kind string, _ time.Duration, err error) {
	p.resourceReads.WithLabelValues(kind, statusLabel(err)).Inc()
}

func (p *PrometheusMetrics) ObserveAPIRequest(method, endpoint string, status int, duration time.Duration) {
	p.apiRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	p.apiRequestLength.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	if code, ok := domain.CodeFrom(err); ok {
		return string(code)
	}
	return "error"
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
