// Package keyspace provides a high-level interface for the Redis-shaped
// data operations exercised by the REST front-end and the load tooling,
// together with unified error handling and a replica-acknowledgment write
// policy.
//
// The package focuses on:
//   - A unified interface (IKeyspace) for data operations across different
//     backends, so the front-end does not care which topology it talks to
//   - A WritePolicy expressing quasi-synchronous writes: block until N
//     replicas acknowledge, fail the request otherwise
//   - A structured error system using typed return codes
//
// Implementations:
//
//	The module includes two implementations of the IKeyspace interface:
//
//	- Redis keyspace (redis): backed by the go-redis client against an
//	  external Redis, Redis Sentinel, Redis Cluster or DragonflyDB
//	  deployment. Replication, quorum enforcement and failover promotion
//	  live entirely inside those servers; this implementation only issues
//	  commands (including WAIT for the write policy) and maps replies.
//	  Available in "github.com/elimelt/ha-redis/lib/keyspace/redis".
//
//	- Memory keyspace (memory): a single-process implementation used for
//	  local development and tests. It needs no external services and
//	  trivially satisfies any write policy.
//	  Available in "github.com/elimelt/ha-redis/lib/keyspace/memory".
package keyspace
