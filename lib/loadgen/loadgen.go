package loadgen

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elimelt/ha-redis/lib/keyspace"
	"github.com/elimelt/ha-redis/lib/stats"
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config controls a single load run.
type Config struct {
	// Operations is the total number of operations to issue.
	Operations int `json:"operations"`
	// ReadWriteRatio is the percentage of operations that are reads (0-100).
	ReadWriteRatio int `json:"readWriteRatio"`
	// Concurrency is the number of workers issuing operations in parallel.
	Concurrency int `json:"concurrency"`
	// TTL is applied to values written by the set operation.
	TTL time.Duration `json:"-"`
}

// ApplyDefaults fills in the defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Operations <= 0 {
		c.Operations = 100
	}
	if c.ReadWriteRatio <= 0 {
		c.ReadWriteRatio = 70
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.TTL <= 0 {
		c.TTL = 300 * time.Second
	}
}

// --------------------------------------------------------------------------
// Report
// --------------------------------------------------------------------------

// Report summarizes a completed load run.
type Report struct {
	Requested  int64 `json:"requested"`
	Completed  int64 `json:"completed"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	Reads      int64 `json:"reads"`
	Writes     int64 `json:"writes"`

	LatencyAvg string `json:"latencyAvg"`
	LatencyP50 string `json:"latencyP50"`
	LatencyP95 string `json:"latencyP95"`
	LatencyP99 string `json:"latencyP99"`
}

// --------------------------------------------------------------------------
// Runner
// --------------------------------------------------------------------------

var (
	writeOps = []string{"set", "incr", "lpush", "sadd", "hset"}
	readOps  = []string{"get", "exists", "lrange", "smembers", "hgetall"}
)

// Run issues a mixed workload against the keyspace and reports counters and
// latency percentiles. The operation mix matches the front-end's routes:
// writes are spread over set/incr/lpush/sadd/hset, reads over
// get/exists/lrange/smembers/hgetall, and a read of a missing key counts as
// a success. Run returns once all operations completed or the context was
// canceled; a canceled run reports the operations finished so far.
//
// The report's percentiles always cover this run only. When hist is non-nil
// every operation is additionally observed there, which is how the
// front-end folds generated load into its cumulative latency statistics.
func Run(ctx context.Context, ks keyspace.IKeyspace, cfg Config, hist *stats.LatencyHistogram) Report {
	cfg.ApplyDefaults()

	var completed, successful, failed, reads, writes atomic.Int64
	latency := stats.NewLatencyHistogram()

	// split the operation budget over the workers
	perWorker := cfg.Operations / cfg.Concurrency
	remainder := cfg.Operations % cfg.Concurrency

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		budget := perWorker
		if w < remainder {
			budget++
		}

		g.Go(func() error {
			rng := rand.New(rand.NewSource(rand.Int63()))
			for i := 0; i < budget; i++ {
				if ctx.Err() != nil {
					return nil
				}

				isRead := rng.Intn(100) < cfg.ReadWriteRatio

				start := time.Now()
				var err error
				if isRead {
					reads.Add(1)
					err = runRead(ctx, ks, readOps[rng.Intn(len(readOps))])
				} else {
					writes.Add(1)
					err = runWrite(ctx, ks, writeOps[rng.Intn(len(writeOps))], cfg.TTL)
				}
				d := time.Since(start)
				latency.Observe(d)
				if hist != nil {
					hist.Observe(d)
				}

				if err != nil {
					failed.Add(1)
				} else {
					successful.Add(1)
				}
				completed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures are counted

	return Report{
		Requested:  int64(cfg.Operations),
		Completed:  completed.Load(),
		Successful: successful.Load(),
		Failed:     failed.Load(),
		Reads:      reads.Load(),
		Writes:     writes.Load(),
		LatencyAvg: latency.Average().String(),
		LatencyP50: latency.PercentileEstimate(50).String(),
		LatencyP95: latency.PercentileEstimate(95).String(),
		LatencyP99: latency.PercentileEstimate(99).String(),
	}
}

func runRead(ctx context.Context, ks keyspace.IKeyspace, op string) error {
	switch op {
	case "get":
		// a miss is not a failure
		_, _, err := ks.Get(ctx, RandomKey())
		return err
	case "exists":
		_, err := ks.Exists(ctx, RandomKey())
		return err
	case "lrange":
		_, err := ks.LRange(ctx, RandomListKey(), 0, 10)
		return err
	case "smembers":
		_, err := ks.SMembers(ctx, RandomSetKey())
		return err
	default:
		_, err := ks.HGetAll(ctx, RandomHashKey())
		return err
	}
}

func runWrite(ctx context.Context, ks keyspace.IKeyspace, op string, ttl time.Duration) error {
	switch op {
	case "set":
		return ks.Set(ctx, RandomKey(), RandomString(20), ttl)
	case "incr":
		_, err := ks.Incr(ctx, RandomCounterKey())
		return err
	case "lpush":
		return ks.LPush(ctx, RandomListKey(), RandomString(20))
	case "sadd":
		_, err := ks.SAdd(ctx, RandomSetKey(), RandomString(20))
		return err
	default:
		_, err := ks.HSet(ctx, RandomHashKey(), RandomString(10), RandomString(20))
		return err
	}
}
