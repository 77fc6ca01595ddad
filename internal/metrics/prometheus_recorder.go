package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	mu              sync.Mutex
	resolveDuration prom.Histogram
	resolutions     *prom.CounterVec
	reloads         *prom.CounterVec
	configInfo      *prom.GaugeVec
	lastFingerprint string
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "exportcfg",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of build configuration resolution",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "exportcfg",
			Name:      "resolutions_total",
			Help:      "Configuration resolutions by outcome",
		}, []string{"outcome"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "exportcfg",
			Name:      "reloads_total",
			Help:      "Watch-triggered reloads by outcome",
		}, []string{"outcome"}),
		configInfo: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "exportcfg",
			Name:      "config_info",
			Help:      "Fingerprint of the active build configuration (value is always 1)",
		}, []string{"fingerprint"}),
	}
	reg.MustRegister(pr.resolveDuration, pr.resolutions, pr.reloads, pr.configInfo)
	return pr
}

func (p *PrometheusRecorder) ObserveResolve(d time.Duration, outcome Outcome) {
	if p == nil {
		return
	}
	p.resolveDuration.Observe(d.Seconds())
	p.resolutions.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncReload(outcome Outcome) {
	if p == nil {
		return
	}
	p.reloads.WithLabelValues(string(outcome)).Inc()
}

// SetConfigInfo exposes the active fingerprint; the previous series is removed.
func (p *PrometheusRecorder) SetConfigInfo(fingerprint string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastFingerprint != "" {
		p.configInfo.DeleteLabelValues(p.lastFingerprint)
	}
	p.configInfo.WithLabelValues(fingerprint).Set(1)
	p.lastFingerprint = fingerprint
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
