package orchestrator

import (
	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/service/executor"
)

// nodeOutput is the value a completed node exposed to its downstream edges.
// Conditional nodes additionally carry the selected branch handle.
type nodeOutput struct {
	value        interface{}
	outputHandle string
	conditional  bool
}

// gatherInputs collects the edge-supplied inputs of a node from the outputs
// of already completed upstream nodes. An edge from a conditional contributes
// only when its source handle matches the selected branch, which is how
// untaken branches starve their targets into a skip. When exactly one named
// input resolves and none is keyed "input", it is aliased to "input".
func gatherInputs(flow *model.Flow, nodeID string, outputs map[string]*nodeOutput, variables map[string]interface{}) executor.Inputs {
	inputs := executor.Inputs{}
	for _, edge := range flow.Incoming(nodeID) {
		produced, ok := outputs[edge.Source]
		if !ok {
			continue
		}
		if produced.conditional && edge.SourceHandle != produced.outputHandle {
			continue
		}
		handle := edge.TargetHandle
		if handle == "" {
			handle = model.DefaultTargetHandle
		}
		inputs[handle] = produced.value
	}
	if len(inputs) == 1 {
		if _, ok := inputs[executor.InputKey]; !ok {
			for _, value := range inputs {
				inputs = executor.Inputs{executor.InputKey: value}
			}
		}
	}
	inputs[executor.VariablesKey] = variables
	return inputs
}

// snapshotVariables copies the flow variables so that nodes running in the
// same level cannot observe each other's writes.
func snapshotVariables(variables map[string]interface{}) map[string]interface{} {
	snapshot := make(map[string]interface{}, len(variables))
	for key, value := range variables {
		snapshot[key] = value
	}
	return snapshot
}
