package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	rosterMutations *prometheus.CounterVec
	inviteOutcomes  *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	rosterMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_mutations_total",
		Help: "Total roster mutations by kind",
	}, []string{"kind"})

	inviteOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invite_validations_total",
		Help: "Invite token validation outcomes",
	}, []string{"outcome"})

	registry.MustRegister(
		requestDuration,
		requestTotal,
		rosterMutations,
		inviteOutcomes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		rosterMutations: rosterMutations,
		inviteOutcomes:  inviteOutcomes,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records request metrics.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// CountRosterMutation tracks attendance register/remove/early-leave calls.
func (s *MetricsService) CountRosterMutation(kind string) {
	s.rosterMutations.WithLabelValues(kind).Inc()
}

// CountInviteOutcome tracks invite validation verdicts.
func (s *MetricsService) CountInviteOutcome(outcome string) {
	s.inviteOutcomes.WithLabelValues(outcome).Inc()
}
