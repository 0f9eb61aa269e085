// Package metric provides Prometheus metrics for wizcli.
package metric

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for request counters.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTransport = "transport_error"
)

// Registry holds the client request metrics.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all client metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wizcli",
			Name:      "requests_total",
			Help:      "API requests issued, by command and outcome.",
		}, []string{"command", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wizcli",
			Name:      "request_duration_seconds",
			Help:      "API request latency, by command.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"command"}),
	}

	r.registry.MustRegister(r.RequestsTotal, r.RequestDuration)
	return r
}

// Observe records one finished request.
func (r *Registry) Observe(command, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(command, outcome).Inc()
	r.RequestDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RequestStat is one row of the request statistics snapshot.
type RequestStat struct {
	Command  string  `json:"command" yaml:"command"`
	OK       uint64  `json:"ok" yaml:"ok"`
	Errors   uint64  `json:"errors" yaml:"errors"`
	AvgMilli float64 `json:"avg_ms" yaml:"avg_ms"`
}

// Snapshot gathers the registry into per-command rows sorted by command.
func (r *Registry) Snapshot() ([]RequestStat, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*RequestStat)
	row := func(cmd string) *RequestStat {
		if s, ok := rows[cmd]; ok {
			return s
		}
		s := &RequestStat{Command: cmd}
		rows[cmd] = s
		return s
	}

	for _, mf := range families {
		switch mf.GetName() {
		case "wizcli_requests_total":
			for _, m := range mf.GetMetric() {
				labels := labelMap(m.GetLabel())
				s := row(labels["command"])
				n := uint64(m.GetCounter().GetValue())
				if labels["outcome"] == OutcomeOK {
					s.OK += n
				} else {
					s.Errors += n
				}
			}
		case "wizcli_request_duration_seconds":
			for _, m := range mf.GetMetric() {
				labels := labelMap(m.GetLabel())
				h := m.GetHistogram()
				if h.GetSampleCount() > 0 {
					row(labels["command"]).AvgMilli = h.GetSampleSum() / float64(h.GetSampleCount()) * 1000
				}
			}
		}
	}

	out := make([]RequestStat, 0, len(rows))
	for _, s := range rows {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Command < out[j].Command })
	return out, nil
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
