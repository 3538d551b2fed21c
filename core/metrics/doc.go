// Package metrics defines the sinks recording ingestion and planning
// activity. Sinks like PromSink and InfluxSink live in infra/metrics and can
// be combined with a MultiSink. NewMetricsSink returns a MultiSink
// automatically when several sinks are configured.
package metrics
