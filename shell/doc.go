// Package shell holds the imperative-shell infrastructure shared by all command and query handlers:
// retry of the read-decide-write cycle on concurrency conflicts, handler results carrying retry
// metadata, and helpers for recording metrics, spans and log lines around handler executions.
package shell
