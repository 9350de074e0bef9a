package executor

import (
	"errors"
	"fmt"

	"github.com/bruhlabs/flowrun/model"
)

// ErrNotRegistered is returned by Lookup for node types without an executor.
// This is the single extensibility seam: adding a node type means registering
// an executor, nothing in the orchestrator changes.
var ErrNotRegistered = errors.New("executor: not registered")

// NewNotRegisteredError builds a lookup failure for the given node type.
func NewNotRegisteredError(nodeType model.NodeType) error {
	return fmt.Errorf("%w: no executor for node type %q", ErrNotRegistered, nodeType)
}

// NewInvalidConfigError reports a config payload of an unexpected Go type.
func NewInvalidConfigError(config interface{}) string {
	return fmt.Sprintf("invalid node config %T", config)
}
