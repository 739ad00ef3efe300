// Package memory implements the keyspace.IKeyspace interface in process,
// with no external services. It backs the "memory" serve backend and the
// handler and load-generator tests.
//
// Keys live in an xsync.MapOf with one mutex per entry; each entry carries
// a fixed kind (string, list, set, hash) that is checked on every
// operation, mirroring the server's WRONGTYPE behavior. Expiration is
// lazy: an expired entry is dropped when it is next touched.
//
// Being a single node, this keyspace trivially satisfies any write policy;
// there is no replica to wait for.
package memory
