// Package orchestrator executes a flow level by level: nodes within a level
// run concurrently, levels run strictly in order, and the execution trace is
// persisted incrementally so a crash mid-run leaves a partial, inspectable
// record.
package orchestrator
