// Package stats tracks request counters and latency distributions for the
// REST front-end and the load generator.
//
// The Recorder keeps resettable atomic counters (total, successful,
// failed, reads, writes) and derives uptime, request rate and success rate
// for the /stats endpoint. The same counters are mirrored into
// VictoriaMetrics for Prometheus exposition on /metrics.
//
// The LatencyHistogram buckets operation durations exponentially from
// microseconds to seconds and provides average and percentile estimates
// without retaining individual samples.
package stats
