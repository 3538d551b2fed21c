package metrics

import "github.com/kilianp07/dockflow/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint, disabled
	// when empty.
	PrometheusAddr string `json:"prometheus_addr"`
}
