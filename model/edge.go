package model

const (
	// DefaultSourceHandle is the output port assumed when an edge does not
	// name one explicitly.
	DefaultSourceHandle = "output"

	// DefaultTargetHandle is the input port assumed when an edge does not
	// name one explicitly.
	DefaultTargetHandle = "input"
)

// Edge is a directed data link from a named output port of the source node to
// a named input port of the target node. Multiple edges may target the same
// node and multiple edges may fan out from the same source.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Normalize fills empty handles with their defaults.
func (e *Edge) Normalize() {
	if e.SourceHandle == "" {
		e.SourceHandle = DefaultSourceHandle
	}
	if e.TargetHandle == "" {
		e.TargetHandle = DefaultTargetHandle
	}
}
