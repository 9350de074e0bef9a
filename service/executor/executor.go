package executor

import (
	"context"
)

// VariablesKey is the reserved input key under which the orchestrator injects
// a snapshot of the flow variables into every executor invocation.
const VariablesKey = "__variables__"

// InputKey is the conventional primary input port name.
const InputKey = "input"

// Inputs carries the values gathered from a node's incoming edges, keyed by
// target handle, plus the reserved flow-variables entry.
type Inputs map[string]interface{}

// Input returns the primary input value or nil
func (i Inputs) Input() interface{} {
	return i[InputKey]
}

// Variables returns the flow variable snapshot injected by the orchestrator
func (i Inputs) Variables() map[string]interface{} {
	if value, ok := i[VariablesKey].(map[string]interface{}); ok {
		return value
	}
	return nil
}

// Named returns edge-supplied inputs keyed by handle, excluding reserved keys
func (i Inputs) Named() map[string]interface{} {
	ret := make(map[string]interface{}, len(i))
	for key, value := range i {
		if key == VariablesKey {
			continue
		}
		ret[key] = value
	}
	return ret
}

// IsEmpty reports whether no edge supplied any input
func (i Inputs) IsEmpty() bool {
	for key := range i {
		if key != VariablesKey {
			return false
		}
	}
	return true
}

// VariableAssignment is the side-signal emitted by variable_set executors;
// only the orchestrator applies it to the flow variables.
type VariableAssignment struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Result is the outcome of one executor invocation. Success false marks an
// expected node-level failure; executors never panic on bad input.
type Result struct {
	Success bool        `json:"success"`
	Output  interface{} `json:"output,omitempty"`
	Error   string      `json:"error,omitempty"`

	// conditional branch selection
	OutputHandle     string `json:"outputHandle,omitempty"`
	MatchedCondition string `json:"matchedCondition,omitempty"`

	// variable mutation side-signals
	SetVariable  *VariableAssignment    `json:"setVariable,omitempty"`
	SetVariables map[string]interface{} `json:"setVariables,omitempty"`

	// provider usage passthrough
	ModelUsed  string `json:"modelUsed,omitempty"`
	TokensUsed int    `json:"tokensUsed,omitempty"`
}

// Succeed creates a successful result
func Succeed(output interface{}) *Result {
	return &Result{Success: true, Output: output}
}

// Fail creates a failed result with the given message
func Fail(message string) *Result {
	return &Result{Success: false, Error: message}
}

// NodeExecutor turns a node's typed configuration plus resolved inputs into
// an output or error. Implementations are stateless and must be safe for
// concurrent use; config is the pointer to the struct type registered for the
// node type tag.
type NodeExecutor interface {
	Execute(ctx context.Context, config interface{}, inputs Inputs) *Result
}
