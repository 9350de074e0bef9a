package model

// Flow represents a persisted flow definition: a directed acyclic graph of
// typed nodes plus flow-scoped variables. A flow is immutable per version;
// edits bump Version and executions always run against the snapshot they were
// created with.
type Flow struct {
	// ID is the unique identifier of the flow
	ID string `json:"id" yaml:"id"`

	// Name is a human-readable flow name
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the flow
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version specifies the flow definition version
	Version int `json:"version,omitempty" yaml:"version,omitempty"`

	// Nodes holds the processing nodes in authoring order
	Nodes []*Node `json:"nodes" yaml:"nodes"`

	// Edges holds the directed data links between node ports
	Edges []*Edge `json:"edges" yaml:"edges"`

	// Variables maps variable name to its initial value
	Variables map[string]interface{} `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// NewFlow creates a new flow with the given name
func NewFlow(name string) *Flow {
	return &Flow{
		Name:      name,
		Version:   1,
		Variables: make(map[string]interface{}),
	}
}

// WithDescription sets the description of the flow
func (f *Flow) WithDescription(description string) *Flow {
	f.Description = description
	return f
}

// WithVariable sets an initial flow variable
func (f *Flow) WithVariable(name string, value interface{}) *Flow {
	if f.Variables == nil {
		f.Variables = make(map[string]interface{})
	}
	f.Variables[name] = value
	return f
}

// AddNode appends a node to the flow
func (f *Flow) AddNode(node *Node) *Flow {
	f.Nodes = append(f.Nodes, node)
	return f
}

// Connect appends an edge between two nodes using default port handles
func (f *Flow) Connect(source, target string) *Flow {
	return f.ConnectPorts(source, DefaultSourceHandle, target, DefaultTargetHandle)
}

// ConnectPorts appends an edge between named ports of two nodes
func (f *Flow) ConnectPorts(source, sourceHandle, target, targetHandle string) *Flow {
	edge := &Edge{
		ID:           source + "-" + target,
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	f.Edges = append(f.Edges, edge)
	return f
}

// Node returns the node with the given id or nil
func (f *Flow) Node(id string) *Node {
	for _, node := range f.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// NodeIDs returns the set of node identifiers
func (f *Flow) NodeIDs() map[string]bool {
	ret := make(map[string]bool, len(f.Nodes))
	for _, node := range f.Nodes {
		ret[node.ID] = true
	}
	return ret
}

// NodesByType returns all nodes of the given type in authoring order
func (f *Flow) NodesByType(nodeType NodeType) []*Node {
	var ret []*Node
	for _, node := range f.Nodes {
		if node.Type == nodeType {
			ret = append(ret, node)
		}
	}
	return ret
}

// Incoming returns edges targeting the given node, in authoring order
func (f *Flow) Incoming(nodeID string) []*Edge {
	var ret []*Edge
	for _, edge := range f.Edges {
		if edge.Target == nodeID {
			ret = append(ret, edge)
		}
	}
	return ret
}

// Outgoing returns edges originating from the given node, in authoring order
func (f *Flow) Outgoing(nodeID string) []*Edge {
	var ret []*Edge
	for _, edge := range f.Edges {
		if edge.Source == nodeID {
			ret = append(ret, edge)
		}
	}
	return ret
}

// Normalize fills defaulted edge handles in place
func (f *Flow) Normalize() {
	for _, edge := range f.Edges {
		edge.Normalize()
	}
}

// Clone creates a deep copy of the flow so that callers can mutate the result
// without affecting the original definition.
func (f *Flow) Clone() *Flow {
	if f == nil {
		return nil
	}
	clone := &Flow{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Version:     f.Version,
	}
	if f.Nodes != nil {
		clone.Nodes = make([]*Node, len(f.Nodes))
		for i, node := range f.Nodes {
			clone.Nodes[i] = node.Clone()
		}
	}
	if f.Edges != nil {
		clone.Edges = make([]*Edge, len(f.Edges))
		for i, edge := range f.Edges {
			cp := *edge
			clone.Edges[i] = &cp
		}
	}
	if f.Variables != nil {
		clone.Variables = make(map[string]interface{}, len(f.Variables))
		for k, v := range f.Variables {
			clone.Variables[k] = v
		}
	}
	return clone
}
