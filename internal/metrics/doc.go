// Package metrics provides observability hooks for enhancement runs.
//
// The Recorder interface defines all metric operations. NoopRecorder is the
// default implementation and does nothing, so components take a Recorder by
// injection without nil checks:
//
//	proc := site.NewProcessor(cfg, site.WithRecorder(metrics.NoopRecorder{}))
//
// When the daemon runs with metrics enabled it swaps in a
// PrometheusRecorder backed by a private registry and serves it over
// HTTPHandler on the status endpoint.
package metrics
