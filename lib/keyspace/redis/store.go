package redis

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/elimelt/ha-redis/lib/keyspace"
	"github.com/elimelt/ha-redis/lib/logger"
)

var log = logger.Get("keyspace")

// waiter extends UniversalClient with the WAIT command, which go-redis
// exposes only on its concrete client types.
type waiter interface {
	goredis.UniversalClient
	Wait(ctx context.Context, numSlaves int, timeout time.Duration) *goredis.IntCmd
}

type keyspaceImpl struct {
	write  waiter
	read   goredis.UniversalClient
	policy keyspace.WritePolicy
}

// New creates a Redis-backed keyspace for the configured topology.
func New(cfg Config) (keyspace.IKeyspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Topology {
	case TopologyReplicated:
		return newReplicated(cfg), nil
	case TopologySentinel:
		return newSentinel(cfg), nil
	default:
		return newCluster(cfg), nil
	}
}

// newReplicated connects one client to the primary for writes and one to a
// replica for reads. With ReadFrom set to "primary" both roles share the
// primary client, which gives read-your-writes at the cost of read scaling.
func newReplicated(cfg Config) keyspace.IKeyspace {
	write := goredis.NewClient(&goredis.Options{
		Addr:         cfg.PrimaryAddr,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	read := goredis.UniversalClient(write)
	if cfg.ReadFrom != ReadFromPrimary {
		read = goredis.NewClient(&goredis.Options{
			Addr:         cfg.ReplicaAddr,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}

	log.Infof("connecting to primary %s, reads from %s", cfg.PrimaryAddr, cfg.ReadFrom)

	return &keyspaceImpl{
		write:  write,
		read:   read,
		policy: cfg.Policy,
	}
}

// newSentinel creates a failover client that asks the Sentinel daemons for
// the current primary and re-resolves it after a promotion.
func newSentinel(cfg Config) keyspace.IKeyspace {
	client := goredis.NewFailoverClient(&goredis.FailoverOptions{
		MasterName:    cfg.MasterName,
		SentinelAddrs: cfg.SentinelAddrs,
		DialTimeout:   cfg.DialTimeout,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
	})

	log.Infof("connecting via sentinels %v, master name %q", cfg.SentinelAddrs, cfg.MasterName)

	return &keyspaceImpl{
		write:  client,
		read:   client,
		policy: cfg.Policy,
	}
}

// newCluster creates a cluster client. Key routing to slot owners happens
// inside the client library.
func newCluster(cfg Config) keyspace.IKeyspace {
	client := goredis.NewClusterClient(&goredis.ClusterOptions{
		Addrs:        cfg.ClusterAddrs,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	log.Infof("connecting to cluster nodes %v", cfg.ClusterAddrs)

	return &keyspaceImpl{
		write:  client,
		read:   client,
		policy: cfg.Policy,
	}
}

// --------------------------------------------------------------------------
// Write acknowledgment
// --------------------------------------------------------------------------

// confirmWrite blocks until the configured number of replicas have
// acknowledged the connection's current replication offset. The WAIT
// command is implemented by the server; if it reports fewer replicas than
// required, the write is surfaced as failed even though the primary may
// already have applied it.
func (s *keyspaceImpl) confirmWrite(ctx context.Context) error {
	if !s.policy.Synchronous() {
		return nil
	}

	acked, err := s.write.Wait(ctx, s.policy.MinReplicas, s.policy.WaitTimeout).Result()
	if err != nil {
		return keyspace.NewErrorf(keyspace.RetCInternalError, "WAIT failed: %v", err)
	}
	if int(acked) < s.policy.MinReplicas {
		return keyspace.NewErrorf(keyspace.RetCInsufficientAcks,
			"write acknowledged by %d of %d required replicas within %s",
			acked, s.policy.MinReplicas, s.policy.WaitTimeout)
	}
	return nil
}

// wrapErr converts a client error into a typed keyspace error.
func wrapErr(err error) *keyspace.Error {
	if strings.HasPrefix(err.Error(), "WRONGTYPE") {
		return keyspace.NewError(keyspace.RetCInvalidOperation, err.Error())
	}
	return keyspace.NewError(keyspace.RetCInternalError, err.Error())
}

// --------------------------------------------------------------------------
// Interface Methods (docu see keyspace/interface.go)
// --------------------------------------------------------------------------

func (s *keyspaceImpl) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.write.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrapErr(err)
	}
	return s.confirmWrite(ctx)
}

func (s *keyspaceImpl) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.read.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(err)
	}
	return value, true, nil
}

func (s *keyspaceImpl) Incr(ctx context.Context, key string) (int64, error) {
	value, err := s.write.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrapErr(err)
	}
	return value, s.confirmWrite(ctx)
}

func (s *keyspaceImpl) LPush(ctx context.Context, key, value string) error {
	if err := s.write.LPush(ctx, key, value).Err(); err != nil {
		return wrapErr(err)
	}
	// bound the list so load generation cannot grow it without limit
	if err := s.write.LTrim(ctx, key, 0, keyspace.MaxListLen-1).Err(); err != nil {
		return wrapErr(err)
	}
	return s.confirmWrite(ctx)
}

func (s *keyspaceImpl) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := s.read.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	return values, nil
}

func (s *keyspaceImpl) SAdd(ctx context.Context, key, member string) (bool, error) {
	added, err := s.write.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, wrapErr(err)
	}
	return added == 1, s.confirmWrite(ctx)
}

func (s *keyspaceImpl) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.read.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	return members, nil
}

func (s *keyspaceImpl) HSet(ctx context.Context, key, field, value string) (bool, error) {
	created, err := s.write.HSet(ctx, key, field, value).Result()
	if err != nil {
		return false, wrapErr(err)
	}
	return created == 1, s.confirmWrite(ctx)
}

func (s *keyspaceImpl) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.read.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	return fields, nil
}

func (s *keyspaceImpl) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.read.Exists(ctx, key).Result()
	if err != nil {
		return false, wrapErr(err)
	}
	return n == 1, nil
}

func (s *keyspaceImpl) Delete(ctx context.Context, key string) error {
	if err := s.write.Del(ctx, key).Err(); err != nil {
		return wrapErr(err)
	}
	return s.confirmWrite(ctx)
}

func (s *keyspaceImpl) Ping(ctx context.Context) error {
	if err := s.write.Ping(ctx).Err(); err != nil {
		return wrapErr(err)
	}
	if s.read != s.write {
		if err := s.read.Ping(ctx).Err(); err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

func (s *keyspaceImpl) Close() error {
	err := s.write.Close()
	if s.read != s.write {
		if rerr := s.read.Close(); err == nil {
			err = rerr
		}
	}
	return err
}
