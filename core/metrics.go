package core

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayview_http_requests_total",
			Help: "Pages served, by route and status code.",
		}, []string{"route", "code"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayview_upstream_requests_total",
			Help: "Outbound API calls, by API and status code (0 for transport errors).",
		}, []string{"api", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dayview_upstream_request_duration_seconds",
			Help:    "Outbound API call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"api"}),
	}
	m.registry.MustRegister(m.requests, m.upstreamRequests, m.upstreamDuration)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(route string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) observeUpstream(api string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(api, strconv.Itoa(code)).Inc()
	m.upstreamDuration.WithLabelValues(api).Observe(d.Seconds())
}
