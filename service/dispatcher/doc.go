// Package dispatcher provides asynchronous flow execution: a queue-backed
// worker pool that picks up persisted executions, runs them through the
// orchestrator, and supports cooperative cancellation.
package dispatcher
