// Package cmd implements the command-line interface for ha-redis. It
// provides a hierarchical command structure with operations for running the
// HTTP front-end and benchmarking it.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the HTTP front-end
//   - bench: Commands for benchmarking one or more front-end instances
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See haredis -help for a list of all commands.
package cmd
