package executor

import (
	"context"
)

// VariableGetConfig is the variable_get node payload.
type VariableGetConfig struct {
	VariableName  string      `json:"variableName"`
	FallbackValue interface{} `json:"fallbackValue,omitempty"`
}

// VariableGet reads a value from the flow variable snapshot.
type VariableGet struct{}

// NewVariableGet creates a variable_get executor.
func NewVariableGet() *VariableGet {
	return &VariableGet{}
}

// Execute returns the stored value, or the fallback when the variable is
// unset.
func (e *VariableGet) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*VariableGetConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	if cfg.VariableName == "" {
		return Fail("Variable name is required")
	}
	if value, ok := inputs.Variables()[cfg.VariableName]; ok {
		return Succeed(value)
	}
	return Succeed(cfg.FallbackValue)
}

// VariableSetConfig is the variable_set node payload.
type VariableSetConfig struct {
	VariableName string      `json:"variableName"`
	ValueSource  string      `json:"valueSource,omitempty"`
	StaticValue  interface{} `json:"staticValue,omitempty"`
}

// VariableSet passes a value through and emits a variable assignment
// side-signal; only the orchestrator applies the assignment, so writes
// become visible at the next level boundary.
type VariableSet struct{}

// NewVariableSet creates a variable_set executor.
func NewVariableSet() *VariableSet {
	return &VariableSet{}
}

// Execute resolves the value from the configured source and signals the
// assignment.
func (e *VariableSet) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*VariableSetConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	if cfg.VariableName == "" {
		return Fail("Variable name is required")
	}
	var value interface{}
	if cfg.ValueSource == "static" {
		value = cfg.StaticValue
	} else {
		value = inputs.Input()
	}
	result := Succeed(value)
	result.SetVariable = &VariableAssignment{Name: cfg.VariableName, Value: value}
	return result
}
