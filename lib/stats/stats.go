package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Recorder
// --------------------------------------------------------------------------

// Recorder tracks request counters and latencies for the front-end. All
// methods are safe for concurrent use. Counters are mirrored into
// VictoriaMetrics so they show up on the Prometheus endpoint; the mirrored
// counters are cumulative and survive Reset (Prometheus counters must not
// go backwards), while snapshots are computed from the resettable atomics.
type Recorder struct {
	total      atomic.Int64
	successful atomic.Int64
	failed     atomic.Int64
	reads      atomic.Int64
	writes     atomic.Int64
	startTime  atomic.Int64

	latency *LatencyHistogram

	mReads   *metrics.Counter
	mWrites  *metrics.Counter
	mSuccess *metrics.Counter
	mFailed  *metrics.Counter
}

// NewRecorder creates a recorder with the start time set to now.
func NewRecorder() *Recorder {
	r := &Recorder{
		latency:  NewLatencyHistogram(),
		mReads:   metrics.GetOrCreateCounter(`haredis_requests_total{kind="read"}`),
		mWrites:  metrics.GetOrCreateCounter(`haredis_requests_total{kind="write"}`),
		mSuccess: metrics.GetOrCreateCounter(`haredis_requests_outcome_total{result="success"}`),
		mFailed:  metrics.GetOrCreateCounter(`haredis_requests_outcome_total{result="failure"}`),
	}
	r.startTime.Store(time.Now().Unix())
	return r
}

// RecordRead records one read request with its outcome and duration.
func (r *Recorder) RecordRead(ok bool, d time.Duration) {
	r.reads.Add(1)
	r.mReads.Inc()
	r.record(ok, d)
}

// RecordWrite records one write request with its outcome and duration.
func (r *Recorder) RecordWrite(ok bool, d time.Duration) {
	r.writes.Add(1)
	r.mWrites.Inc()
	r.record(ok, d)
}

func (r *Recorder) record(ok bool, d time.Duration) {
	r.total.Add(1)
	if ok {
		r.successful.Add(1)
		r.mSuccess.Inc()
	} else {
		r.failed.Add(1)
		r.mFailed.Inc()
	}
	r.latency.Observe(d)
}

// AddBatch folds the counters of a completed load run into the recorder.
// Latencies are recorded individually by the load generator.
func (r *Recorder) AddBatch(reads, writes, successful, failed int64) {
	r.reads.Add(reads)
	r.writes.Add(writes)
	r.total.Add(reads + writes)
	r.successful.Add(successful)
	r.failed.Add(failed)
	r.mReads.Add(int(reads))
	r.mWrites.Add(int(writes))
	r.mSuccess.Add(int(successful))
	r.mFailed.Add(int(failed))
}

// Reset clears all counters and the latency histogram and restarts the
// uptime clock.
func (r *Recorder) Reset() {
	r.total.Store(0)
	r.successful.Store(0)
	r.failed.Store(0)
	r.reads.Store(0)
	r.writes.Store(0)
	r.startTime.Store(time.Now().Unix())
	r.latency.Reset()
}

// Latency exposes the latency histogram, used by the load generator to
// record per-operation durations.
func (r *Recorder) Latency() *LatencyHistogram {
	return r.latency
}

// --------------------------------------------------------------------------
// Snapshot
// --------------------------------------------------------------------------

// Snapshot is a point-in-time view of the recorder, shaped for the /stats
// endpoint.
type Snapshot struct {
	TotalRequests      int64  `json:"totalRequests"`
	SuccessfulRequests int64  `json:"successfulRequests"`
	FailedRequests     int64  `json:"failedRequests"`
	Reads              int64  `json:"reads"`
	Writes             int64  `json:"writes"`
	StartTime          int64  `json:"startTime"`
	Uptime             string `json:"uptime"`
	RequestsPerSecond  string `json:"requestsPerSecond"`
	SuccessRate        string `json:"successRate"`
	LatencyAvg         string `json:"latencyAvg"`
	LatencyP50         string `json:"latencyP50"`
	LatencyP95         string `json:"latencyP95"`
	LatencyP99         string `json:"latencyP99"`
}

// Snapshot returns the current counter values with derived rates.
func (r *Recorder) Snapshot() Snapshot {
	start := r.startTime.Load()
	uptime := float64(time.Now().Unix() - start)
	total := r.total.Load()
	successful := r.successful.Load()

	requestsPerSecond := 0.0
	if uptime > 0 {
		requestsPerSecond = float64(total) / uptime
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(successful) / float64(total) * 100
	}

	return Snapshot{
		TotalRequests:      total,
		SuccessfulRequests: successful,
		FailedRequests:     r.failed.Load(),
		Reads:              r.reads.Load(),
		Writes:             r.writes.Load(),
		StartTime:          start,
		Uptime:             fmt.Sprintf("%.2fs", uptime),
		RequestsPerSecond:  fmt.Sprintf("%.2f", requestsPerSecond),
		SuccessRate:        fmt.Sprintf("%.2f%%", successRate),
		LatencyAvg:         r.latency.Average().String(),
		LatencyP50:         r.latency.PercentileEstimate(50).String(),
		LatencyP95:         r.latency.PercentileEstimate(95).String(),
		LatencyP99:         r.latency.PercentileEstimate(99).String(),
	}
}
