// Package redis implements the keyspace.IKeyspace interface on top of the
// go-redis client, against an external Redis, Redis Sentinel, Redis Cluster
// or DragonflyDB deployment.
//
// The implementation is deliberately thin: every interface method issues a
// single server command (LPush additionally trims the list) and maps the
// reply. Replication, staleness tracking, quorum enforcement and failover
// promotion are properties of the external servers and their Sentinel
// daemons; nothing here duplicates them.
//
// The one piece of protocol surface this package owns is the
// quasi-synchronous write path: with a WritePolicy of MinReplicas > 0,
// every write is followed by WAIT, blocking until the required number of
// replicas acknowledge the current replication offset or the timeout
// expires. An under-acknowledged write fails with RetCInsufficientAcks.
// Together with min-replicas-to-write / min-replicas-max-lag on the server
// side this exercises write rejection under replica loss and lag.
package redis
