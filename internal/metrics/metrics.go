// Package metrics defines the portal's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec

	// Chat metrics
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec
	LLMFallbackTotal   *prometheus.CounterVec

	// Directory metrics
	ProgramMutationsTotal *prometheus.CounterVec
	Programs              prometheus.Gauge
	FeedbackTotal         *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterKeys    *prometheus.GaugeVec

	// Backup metrics
	BackupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	m := &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),

		HTTPDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_duration_seconds",
				Help:    "HTTP request duration in seconds by route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15},
			},
			[]string{"route"},
		),

		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_chat_requests_total",
				Help: "Total chat messages answered by intent and reply source",
			},
			[]string{"intent", "source"}, // source: local, quick, llm
		),

		ChatDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_chat_duration_seconds",
				Help:    "Time to answer one chat message by reply source",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"source"},
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_llm_requests_total",
				Help: "Total augmentation calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, rate_limit, timeout, quota_exhausted, ...
		),

		LLMDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_llm_duration_seconds",
				Help:    "Augmentation call duration in seconds by provider",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
			},
			[]string{"provider"},
		),

		LLMFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_llm_fallback_total",
				Help: "Total augmentation replies served by a fallback provider",
			},
			[]string{"from", "to"},
		),

		ProgramMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_program_mutations_total",
				Help: "Total program create/update/delete attempts by action and status",
			},
			[]string{"action", "status"}, // status: success, invalid, duplicate, not_found, error
		),

		Programs: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_programs",
				Help: "Number of programs in the directory",
			},
		),

		FeedbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_feedback_total",
				Help: "Total feedback submissions by status",
			},
			[]string{"status"},
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter"}, // limiter: chat, llm
		),

		RateLimiterKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portal_rate_limiter_keys",
				Help: "Number of clients tracked by each rate limiter",
			},
			[]string{"limiter"},
		),

		BackupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_backup_total",
				Help: "Total database snapshot operations by operation and status",
			},
			[]string{"operation", "status"}, // operation: push, pull
		),
	}

	return m
}

// RecordHTTPRequest records one served request. route is the gin route
// pattern, never the raw path.
func (m *Metrics) RecordHTTPRequest(method, route, code string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.HTTPDurationSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordChat records an answered chat message
func (m *Metrics) RecordChat(intent, source string, duration time.Duration) {
	m.ChatRequestsTotal.WithLabelValues(intent, source).Inc()
	m.ChatDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordLLM records one augmentation call
func (m *Metrics) RecordLLM(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordLLMFallback records a reply served by a provider other than the primary
func (m *Metrics) RecordLLMFallback(from, to string) {
	m.LLMFallbackTotal.WithLabelValues(from, to).Inc()
}

// RecordProgramMutation records a program create/update/delete attempt
func (m *Metrics) RecordProgramMutation(action, status string) {
	m.ProgramMutationsTotal.WithLabelValues(action, status).Inc()
}

// SetPrograms sets the current program count
func (m *Metrics) SetPrograms(count int) {
	m.Programs.Set(float64(count))
}

// RecordFeedback records a feedback submission
func (m *Metrics) RecordFeedback(status string) {
	m.FeedbackTotal.WithLabelValues(status).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

// SetRateLimiterKeys sets the number of clients a limiter tracks
func (m *Metrics) SetRateLimiterKeys(limiter string, count int) {
	m.RateLimiterKeys.WithLabelValues(limiter).Set(float64(count))
}

// RecordBackup records a snapshot push or pull
func (m *Metrics) RecordBackup(operation, status string) {
	m.BackupTotal.WithLabelValues(operation, status).Inc()
}
