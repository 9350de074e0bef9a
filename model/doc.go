// Package model defines the flow definition data model: flows, typed nodes,
// edges and the node type vocabulary shared by the validator, executor
// registry and orchestrator.
package model
