// Package metrics exposes prometheus counters for code issuance,
// verification, delivery and view history.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records service events. All methods are safe for concurrent use.
type Collector struct {
	codesIssued   *prometheus.CounterVec
	codesVerified *prometheus.CounterVec
	codesRejected *prometheus.CounterVec
	notifyFail    *prometheus.CounterVec
	logins        *prometheus.CounterVec
	viewsRecorded prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		codesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_codes_issued_total",
			Help: "One-time codes issued, by purpose.",
		}, []string{"purpose"}),
		codesVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_codes_verified_total",
			Help: "One-time codes accepted and consumed, by purpose.",
		}, []string{"purpose"}),
		codesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_codes_rejected_total",
			Help: "One-time code attempts rejected, by purpose and reason.",
		}, []string{"purpose", "reason"}),
		notifyFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_notify_failures_total",
			Help: "Code deliveries that failed, by channel.",
		}, []string{"channel"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_logins_total",
			Help: "Login attempts, by result.",
		}, []string{"result"}),
		viewsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounts_views_recorded_total",
			Help: "Item views appended to account history.",
		}),
	}

	reg.MustRegister(
		c.codesIssued,
		c.codesVerified,
		c.codesRejected,
		c.notifyFail,
		c.logins,
		c.viewsRecorded,
	)
	return c
}

func (c *Collector) RecordCodeIssued(purpose string) {
	c.codesIssued.WithLabelValues(purpose).Inc()
}

func (c *Collector) RecordCodeVerified(purpose string) {
	c.codesVerified.WithLabelValues(purpose).Inc()
}

// RecordCodeRejected counts a failed attempt; reason is "invalid" or "expired".
func (c *Collector) RecordCodeRejected(purpose, reason string) {
	c.codesRejected.WithLabelValues(purpose, reason).Inc()
}

func (c *Collector) RecordNotifyFailure(channel string) {
	c.notifyFail.WithLabelValues(channel).Inc()
}

func (c *Collector) RecordLogin(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordView() {
	c.viewsRecorded.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
