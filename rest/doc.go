// Package rest implements the HTTP front-end and its client.
//
// The server exposes one route per keyspace operation plus service routes
// for health, statistics, Prometheus metrics and load generation. Routes
// accept partial JSON bodies: missing keys and values are filled with the
// standard random workload keys, which lets a plain `curl -X POST /set`
// loop act as a crude load generator.
//
// The client spreads requests over several front-end instances round-robin
// and is what the bench command drives.
package rest
