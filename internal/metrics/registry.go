// File: internal/metrics/registry.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry returns the registry served on /metrics, preloaded with the
// Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRegisteredFederation builds the federation collectors for alias and
// registers them on reg.
func NewRegisteredFederation(alias string, reg *prometheus.Registry) (*Federation, error) {
	f := NewFederation(alias)
	if err := f.Register(reg); err != nil {
		return nil, err
	}
	return f, nil
}
