// Package metrics defines the build observability hooks.
//
// Components receive a Recorder through their options. NoopRecorder is the
// default so callers never nil-check; PrometheusRecorder is swapped in when
// monitoring.metrics.enabled is set and served through HTTPHandler.
package metrics
