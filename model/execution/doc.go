// Package execution defines the execution record and trace model: the
// FlowExecution lifecycle, its mutable execution data and the append-only
// per-node NodeResult records exposed to external callers.
package execution
