package model

// NodeType discriminates the node data payload and selects the executor.
type NodeType string

const (
	TypeInput           NodeType = "input"
	TypeLLM             NodeType = "llm"
	TypeOutput          NodeType = "output"
	TypeJSONExtractor   NodeType = "json_extractor"
	TypeConditional     NodeType = "conditional"
	TypeImageGen        NodeType = "image_gen"
	TypeImageOutput     NodeType = "image_output"
	TypeTextTransformer NodeType = "text_transformer"
	TypeVariableGet     NodeType = "variable_get"
	TypeVariableSet     NodeType = "variable_set"
	TypeMerge           NodeType = "merge"
	TypeTemplate        NodeType = "template"
	TypeDelay           NodeType = "delay"
	TypeHTTPRequest     NodeType = "http_request"
	TypeCode            NodeType = "code"
)

// NodeTypes lists the full node type vocabulary in declaration order.
var NodeTypes = []NodeType{
	TypeInput, TypeLLM, TypeOutput, TypeJSONExtractor, TypeConditional,
	TypeImageGen, TypeImageOutput, TypeTextTransformer, TypeVariableGet,
	TypeVariableSet, TypeMerge, TypeTemplate, TypeDelay, TypeHTTPRequest,
	TypeCode,
}

// IsKnown reports whether the type belongs to the vocabulary.
func (t NodeType) IsKnown() bool {
	for _, candidate := range NodeTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the node is a pass-through sink that the
// orchestrator records without invoking an executor.
func (t NodeType) IsTerminal() bool {
	return t == TypeOutput || t == TypeImageOutput
}

// Position carries authoring-UI coordinates; it plays no role in execution.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one typed unit of work within a flow. Data is the type-specific
// configuration payload discriminated by Type; the executor registry decodes
// it into the typed config struct registered for the tag.
type Node struct {
	ID       string                 `json:"id" yaml:"id"`
	Type     NodeType               `json:"type" yaml:"type"`
	Position Position               `json:"position,omitempty" yaml:"position,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewNode creates a node of the given type
func NewNode(id string, nodeType NodeType) *Node {
	return &Node{ID: id, Type: nodeType, Data: make(map[string]interface{})}
}

// With sets a data field and returns the node for chaining
func (n *Node) With(key string, value interface{}) *Node {
	if n.Data == nil {
		n.Data = make(map[string]interface{})
	}
	n.Data[key] = value
	return n
}

// DataString returns a string data field or the empty string
func (n *Node) DataString(key string) string {
	if n.Data == nil {
		return ""
	}
	if value, ok := n.Data[key].(string); ok {
		return value
	}
	return ""
}

// Clone creates a deep-enough copy of the node; Data values are shared since
// node configuration is treated as read-only during execution.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	if n.Data != nil {
		clone.Data = make(map[string]interface{}, len(n.Data))
		for k, v := range n.Data {
			clone.Data[k] = v
		}
	}
	return &clone
}
