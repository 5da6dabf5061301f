package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Prometheus struct {
	Registry         *prometheus.Registry
	UpstreamRequests *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	PollTicks        *prometheus.CounterVec
	LiveSessions     prometheus.Gauge
}

// NewPrometheusMetrics builds the collectors on a private registry so that
// several instances can coexist in tests.
func NewPrometheusMetrics() *Prometheus {
	p := &Prometheus{
		Registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinboard",
				Name:      "upstream_requests_total",
				Help:      "Requests sent to the market data upstream.",
			}, []string{"endpoint", "status"}),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinboard",
				Name:      "cache_lookups_total",
				Help:      "Response cache lookups by kind and result.",
			}, []string{"kind", "result"}),
		PollTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinboard",
				Name:      "poll_ticks_total",
				Help:      "Live price poll ticks by outcome.",
			}, []string{"result"}),
		LiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "coinboard",
				Name:      "live_sessions",
				Help:      "Connected live chart sessions.",
			}),
	}
	p.Registry.MustRegister(
		p.UpstreamRequests,
		p.CacheLookups,
		p.PollTicks,
		p.LiveSessions,
		collectors.NewGoCollector(),
	)
	return p
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})
}

// The helpers below are nil-safe so components can run without metrics.

func (p *Prometheus) Upstream(endpoint, status string) {
	if p == nil {
		return
	}
	p.UpstreamRequests.WithLabelValues(endpoint, status).Inc()
}

func (p *Prometheus) Cache(kind string, hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.CacheLookups.WithLabelValues(kind, result).Inc()
}

func (p *Prometheus) Tick(result string) {
	if p == nil {
		return
	}
	p.PollTicks.WithLabelValues(result).Inc()
}

func (p *Prometheus) SessionOpened() {
	if p == nil {
		return
	}
	p.LiveSessions.Inc()
}

func (p *Prometheus) SessionClosed() {
	if p == nil {
		return
	}
	p.LiveSessions.Dec()
}
