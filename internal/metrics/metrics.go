// Package metrics exposes Prometheus counters for the HTTP API and the
// comment and messaging engines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	CommentsPosted prometheus.Counter
	CommentReads   *prometheus.CounterVec
	MessagesSent   prometheus.Counter
	MessagesMarked prometheus.Counter
	PollItems      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dd_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dd_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CommentsPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dd_comments_posted_total",
			Help: "Comments and replies created.",
		}),
		CommentReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dd_comment_reads_total",
			Help: "Comment mark-read calls by outcome (marked or noop).",
		}, []string{"outcome"}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dd_messages_sent_total",
			Help: "Direct messages sent.",
		}),
		MessagesMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dd_messages_marked_read_total",
			Help: "Messages given a read receipt.",
		}),
		PollItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dd_poll_items_total",
			Help: "Items delivered by poll endpoints, by stream.",
		}, []string{"stream"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.CommentsPosted,
		m.CommentReads,
		m.MessagesSent,
		m.MessagesMarked,
		m.PollItems,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps h so its requests are counted and timed under route.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	h = promhttp.InstrumentHandlerDuration(m.duration.MustCurryWith(labels), h)
	return promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h)
}

// CommentRead records the outcome of a mark-read call.
func (m *Metrics) CommentRead(changed bool) {
	outcome := "noop"
	if changed {
		outcome = "marked"
	}
	m.CommentReads.WithLabelValues(outcome).Inc()
}
