// Package metrics exposes Prometheus counters for the authentication flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultInactive  = "inactive"
	ResultError     = "error"
)

// Collector records auth outcomes. The zero value is not usable; build it
// with NewCollector.
type Collector struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	tokenChecks   *prometheus.CounterVec
	hashLatency   prometheus.Histogram
	httpRequests  *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		tokenChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_token_verifications_total",
			Help: "Bearer token resolutions by result.",
		}, []string{"result"}),
		hashLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gophauth_password_hash_seconds",
			Help:    "Time spent hashing passwords.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.tokenChecks,
		c.hashLatency,
		c.httpRequests,
	)

	return c
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTokenVerification(result string) {
	c.tokenChecks.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHashLatency(d time.Duration) {
	c.hashLatency.Observe(d.Seconds())
}

// RecordHTTPStatus counts one HTTP response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
