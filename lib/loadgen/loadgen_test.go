package loadgen

import (
	"context"
	"strings"
	"testing"

	"github.com/elimelt/ha-redis/lib/keyspace/memory"
	"github.com/elimelt/ha-redis/lib/stats"
)

func TestRunCompletesAllOperations(t *testing.T) {
	ks := memory.New()

	report := Run(context.Background(), ks, Config{
		Operations:     200,
		ReadWriteRatio: 70,
		Concurrency:    4,
	}, nil)

	if report.Requested != 200 {
		t.Errorf("Expected 200 requested, got %d", report.Requested)
	}
	if report.Completed != 200 {
		t.Errorf("Expected 200 completed, got %d", report.Completed)
	}
	if report.Reads+report.Writes != report.Completed {
		t.Errorf("reads+writes (%d+%d) must equal completed (%d)",
			report.Reads, report.Writes, report.Completed)
	}
	if report.Successful+report.Failed != report.Completed {
		t.Errorf("successful+failed (%d+%d) must equal completed (%d)",
			report.Successful, report.Failed, report.Completed)
	}
	// against the memory keyspace every operation must succeed
	if report.Failed != 0 {
		t.Errorf("Expected no failures against the memory keyspace, got %d", report.Failed)
	}
}

func TestRunAppliesDefaults(t *testing.T) {
	ks := memory.New()

	report := Run(context.Background(), ks, Config{}, nil)

	if report.Requested != 100 {
		t.Errorf("Expected default of 100 operations, got %d", report.Requested)
	}
	if report.Completed != 100 {
		t.Errorf("Expected 100 completed, got %d", report.Completed)
	}
}

func TestRunAllReads(t *testing.T) {
	ks := memory.New()

	report := Run(context.Background(), ks, Config{
		Operations:     50,
		ReadWriteRatio: 100,
	}, nil)

	if report.Writes != 0 {
		t.Errorf("Expected no writes with ratio 100, got %d", report.Writes)
	}
	if report.Reads != 50 {
		t.Errorf("Expected 50 reads, got %d", report.Reads)
	}
	// reads of missing keys are successes
	if report.Failed != 0 {
		t.Errorf("Expected no failures on cold reads, got %d", report.Failed)
	}
}

func TestRunRecordsLatency(t *testing.T) {
	ks := memory.New()

	report := Run(context.Background(), ks, Config{Operations: 20}, nil)

	if report.LatencyAvg == "" || report.LatencyAvg == "0s" {
		t.Errorf("Expected a non-zero average latency, got %q", report.LatencyAvg)
	}
	if report.LatencyP50 == "" {
		t.Errorf("Expected a p50 estimate")
	}
}

func TestRunObservesSharedHistogram(t *testing.T) {
	ks := memory.New()
	hist := stats.NewLatencyHistogram()

	report := Run(context.Background(), ks, Config{Operations: 40}, hist)

	if hist.Count() != report.Completed {
		t.Errorf("Expected %d samples in the shared histogram, got %d",
			report.Completed, hist.Count())
	}
	if hist.Average() <= 0 {
		t.Errorf("Expected a non-zero average in the shared histogram")
	}
}

func TestRunCanceledContext(t *testing.T) {
	ks := memory.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := Run(ctx, ks, Config{Operations: 1000, Concurrency: 4}, nil)

	if report.Completed != 0 {
		t.Errorf("Expected no completed operations on a canceled context, got %d", report.Completed)
	}
}

func TestRandomKeys(t *testing.T) {
	testCases := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"key", RandomKey, "key:"},
		{"counter", RandomCounterKey, "counter:"},
		{"list", RandomListKey, "list:"},
		{"set", RandomSetKey, "set:"},
		{"hash", RandomHashKey, "hash:"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				key := tc.gen()
				if !strings.HasPrefix(key, tc.prefix) {
					t.Fatalf("Expected prefix %q, got %q", tc.prefix, key)
				}
			}
		})
	}
}

func TestRandomString(t *testing.T) {
	s := RandomString(20)
	if len(s) != 20 {
		t.Errorf("Expected length 20, got %d", len(s))
	}
}

func TestRandomInt(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := RandomInt(1, 50)
		if v < 1 || v > 50 {
			t.Fatalf("RandomInt(1, 50) returned %d", v)
		}
	}
}
