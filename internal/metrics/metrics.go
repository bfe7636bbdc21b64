// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request-level metrics.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	logins      prometheus.Counter
	loginsFails prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loginsvc_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loginsvc_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loginsvc_logins_total",
			Help: "Successful token issuances.",
		}),
		loginsFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loginsvc_login_failures_total",
			Help: "Rejected login attempts.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.logins, c.loginsFails)
	return c
}

// RecordRequest records one completed HTTP request.
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordLogin records a token issuance or a rejected login.
func (c *Collector) RecordLogin(ok bool) {
	if ok {
		c.logins.Inc()
	} else {
		c.loginsFails.Inc()
	}
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
