package stats

import (
	"math"
	"sync"
	"time"
)

// --------------------------------------------------------------------------
// LatencyHistogram
// --------------------------------------------------------------------------

// LatencyHistogram tracks the distribution of operation latencies.
// It organizes durations into exponential buckets for efficient memory
// usage while still providing useful estimations. The buckets cover the
// range from tens of microseconds (an in-process operation) to multiple
// seconds (a write blocked on WAIT during failover).
type LatencyHistogram struct {
	mutex      sync.RWMutex
	boundaries []time.Duration // Bucket boundaries covering µs to seconds
	buckets    []int64         // Count of samples in each bucket
	count      int64           // Total number of samples
	sum        int64           // Sum of all sampled durations in nanoseconds
}

// NewLatencyHistogram creates a new latency histogram with default bucket
// boundaries.
func NewLatencyHistogram() *LatencyHistogram {
	// Exponential bucket sizes to cover a wide range efficiently
	return &LatencyHistogram{
		boundaries: []time.Duration{
			50 * time.Microsecond, 100 * time.Microsecond, 250 * time.Microsecond,
			500 * time.Microsecond, time.Millisecond, 2500 * time.Microsecond,
			5 * time.Millisecond, 10 * time.Millisecond, 25 * time.Millisecond,
			50 * time.Millisecond, 100 * time.Millisecond, 250 * time.Millisecond,
			500 * time.Millisecond, time.Second, 4 * time.Second,
		},
		buckets: make([]int64, 16), // 15 boundaries + 1 for larger values
	}
}

// Observe adds a latency sample to the histogram
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Observe(d time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// Find the appropriate bucket for this duration
	bucketIndex := len(h.boundaries)
	for i, boundary := range h.boundaries {
		if d <= boundary {
			bucketIndex = i
			break
		}
	}

	// Update statistics
	h.buckets[bucketIndex]++
	h.count++
	h.sum += d.Nanoseconds()
}

// Count returns the total number of samples
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Count() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// Average returns the average latency across all samples
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Average() time.Duration {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return time.Duration(h.sum / h.count)
}

// PercentileEstimate returns an estimate for the given percentile (0-100).
// The estimate is the midpoint of the bucket containing the percentile, so
// its resolution is bounded by the bucket width.
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) PercentileEstimate(percentile int) time.Duration {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	// Calculate target count for percentile
	targetCount := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	cumulativeCount := int64(0)

	for i, count := range h.buckets {
		cumulativeCount += count
		if cumulativeCount >= targetCount {
			// Found the percentile bucket
			if i == 0 {
				// For the first bucket, estimate as half of the boundary
				return h.boundaries[0] / 2
			} else if i < len(h.boundaries) {
				// For middle buckets, use the average of boundaries
				return (h.boundaries[i-1] + h.boundaries[i]) / 2
			}
			// For the last bucket, estimate as 2x the last boundary
			return h.boundaries[len(h.boundaries)-1] * 2
		}
	}

	// Shouldn't happen but as a fallback
	return time.Duration(h.sum / h.count)
}

// Reset clears all histogram data
//
// Thread-safe: This method is safe for concurrent use
func (h *LatencyHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.count = 0
	h.sum = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}
