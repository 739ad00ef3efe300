// Package loadgen generates mixed read/write load against a keyspace and
// measures latency percentiles. It backs the POST /load endpoint and the
// one-shot load mode of the bench command, so both exercise the exact same
// code path.
//
// The operation mix and key spreads mirror the REST routes: string keys
// key:1..1000, counters counter:1..100, lists/sets/hashes numbered 1..50.
// Incrementing the read/write ratio shifts load between the replica-served
// reads and the primary-served (possibly replica-acknowledged) writes,
// which is the knob the topologies under test are measured with.
package loadgen
