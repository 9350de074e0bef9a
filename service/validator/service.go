package validator

import (
	"fmt"

	"github.com/bruhlabs/flowrun/model"
)

// Error is a single structural or field-level finding. NodeID is empty for
// flow-level findings.
type Error struct {
	NodeID  string `json:"nodeId"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result aggregates all findings of one validation pass. Validation never
// mutates the graph and never panics; everything it finds is returned.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []Error  `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// Service validates flow graphs before execution.
type Service struct{}

// New creates a validator service
func New() *Service {
	return &Service{}
}

// Validate runs all structural and per-node-type checks in order and returns
// the aggregated result.
func (s *Service) Validate(nodes []*model.Node, edges []*model.Edge) *Result {
	var errors []Error
	var warnings []string

	if len(nodes) == 0 {
		errors = append(errors, Error{Field: "nodes", Message: "Flow must have at least one node"})
		return &Result{Valid: false, Errors: errors}
	}

	nodeIDs := make(map[string]bool, len(nodes))
	nodeTypes := make(map[string]model.NodeType, len(nodes))
	var inputCount, outputCount int
	for _, node := range nodes {
		nodeIDs[node.ID] = true
		nodeTypes[node.ID] = node.Type
		switch node.Type {
		case model.TypeInput:
			inputCount++
		case model.TypeOutput:
			outputCount++
		}
	}

	if inputCount == 0 {
		errors = append(errors, Error{Field: "nodes", Message: "Flow must have at least one input node"})
	}
	if outputCount == 0 {
		errors = append(errors, Error{Field: "nodes", Message: "Flow must have at least one output node"})
	}

	for _, edge := range edges {
		if !nodeIDs[edge.Source] {
			errors = append(errors, Error{
				NodeID:  edge.Source,
				Field:   "edges",
				Message: fmt.Sprintf("Edge source '%s' references non-existent node", edge.Source),
			})
		}
		if !nodeIDs[edge.Target] {
			errors = append(errors, Error{
				NodeID:  edge.Target,
				Field:   "edges",
				Message: fmt.Sprintf("Edge target '%s' references non-existent node", edge.Target),
			})
		}
	}

	for _, node := range nodes {
		errors = append(errors, s.validateNode(node)...)
		if !node.Type.IsKnown() {
			errors = append(errors, Error{
				NodeID:  node.ID,
				Field:   "type",
				Message: fmt.Sprintf("Unknown node type '%s'", node.Type),
			})
		} else if node.Type == model.TypeCode || node.Type == model.TypeHTTPRequest || node.Type == model.TypeDelay {
			// declared in the vocabulary but no executor is registered yet
			warnings = append(warnings, fmt.Sprintf("Node '%s' has type '%s' which has no registered executor", node.ID, node.Type))
		}
	}

	connected := make(map[string]bool)
	for _, edge := range edges {
		connected[edge.Source] = true
		connected[edge.Target] = true
	}
	for _, node := range nodes {
		if connected[node.ID] {
			continue
		}
		if node.Type != model.TypeInput && node.Type != model.TypeOutput {
			warnings = append(warnings, fmt.Sprintf("Node '%s' is not connected to any other nodes", node.ID))
		}
	}

	if hasCycle(nodes, edges) {
		errors = append(errors, Error{
			Field:   "flow",
			Message: "Flow contains a cycle - execution may loop indefinitely",
		})
	}

	return &Result{Valid: len(errors) == 0, Errors: errors, Warnings: warnings}
}

func (s *Service) validateNode(node *model.Node) []Error {
	var errors []Error
	switch node.Type {
	case model.TypeInput:
		if node.DataString("value") == "" && node.DataString("variableName") == "" {
			errors = append(errors, Error{
				NodeID:  node.ID,
				Field:   "value",
				Message: "Input node must have either a value or variable name",
			})
		}
	case model.TypeLLM:
		if node.DataString("provider") == "" {
			errors = append(errors, Error{NodeID: node.ID, Field: "provider", Message: "LLM node must specify a provider"})
		}
		if node.DataString("model") == "" {
			errors = append(errors, Error{NodeID: node.ID, Field: "model", Message: "LLM node must specify a model"})
		}
		if node.DataString("userPromptTemplate") == "" {
			errors = append(errors, Error{NodeID: node.ID, Field: "userPromptTemplate", Message: "LLM node must have a prompt template"})
		}
		if temp, ok := temperature(node); ok && (temp < 0.0 || temp > 2.0) {
			errors = append(errors, Error{NodeID: node.ID, Field: "temperature", Message: "Temperature must be between 0.0 and 2.0"})
		}
	case model.TypeOutput:
		if node.DataString("format") == "" {
			errors = append(errors, Error{NodeID: node.ID, Field: "format", Message: "Output node must specify a format"})
		}
	}
	return errors
}

func temperature(node *model.Node) (float64, bool) {
	raw, ok := node.Data["temperature"]
	if !ok {
		return 0, false
	}
	switch actual := raw.(type) {
	case float64:
		return actual, true
	case float32:
		return float64(actual), true
	case int:
		return float64(actual), true
	}
	return 0, false
}

// hasCycle runs a depth-first search with a recursion stack; any edge back to
// a node still on the stack is a cycle.
func hasCycle(nodes []*model.Node, edges []*model.Edge) bool {
	graph := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		graph[node.ID] = nil
	}
	for _, edge := range edges {
		if _, ok := graph[edge.Source]; ok {
			graph[edge.Source] = append(graph[edge.Source], edge.Target)
		}
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range graph[id] {
			if !visited[next] {
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, node := range nodes {
		if !visited[node.ID] {
			if dfs(node.ID) {
				return true
			}
		}
	}
	return false
}
