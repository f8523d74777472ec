// File: internal/metrics/federation.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Federation collects outcomes of profile fetches and normalization.
// It satisfies mailru.Recorder.
type Federation struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	normalizeTotal *prometheus.CounterVec
}

// NewFederation builds the collectors for the given provider alias.
func NewFederation(alias string) *Federation {
	labels := prometheus.Labels{"alias": alias}
	return &Federation{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mailru_profile_fetch_total",
			Help:        "Profile endpoint calls by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "mailru_profile_fetch_duration_seconds",
			Help:        "Latency of profile endpoint calls",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"outcome"}),
		normalizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mailru_normalize_total",
			Help:        "Profile normalization results",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}
}

func (f *Federation) ObserveFetch(outcome string, elapsed time.Duration) {
	f.fetchTotal.WithLabelValues(outcome).Inc()
	f.fetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (f *Federation) ObserveNormalize(outcome string) {
	f.normalizeTotal.WithLabelValues(outcome).Inc()
}

// Register registers the collectors on reg (or the default registerer if nil).
// Collectors that are already registered are not an error.
func (f *Federation) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{f.fetchTotal, f.fetchDuration, f.normalizeTotal} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
