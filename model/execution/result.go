package execution

import (
	"time"

	"github.com/bruhlabs/flowrun/internal/clock"
	"github.com/bruhlabs/flowrun/model"
)

// NodeStatus is the per-node outcome within one run.
type NodeStatus string

const (
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
	NodeStatusSkipped NodeStatus = "skipped"
)

// NodeError is the structured error recorded on a failed node. Type carries
// the failure class - "execution" for an executor-reported failure, "crash"
// for a recovered panic.
type NodeError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Type    string `json:"type,omitempty"`
}

// NodeResult is the append-only record of one node outcome.
type NodeResult struct {
	NodeID   string         `json:"nodeId"`
	NodeType model.NodeType `json:"nodeType"`
	Status   NodeStatus     `json:"status"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	// ExecutionTime is the node wall-clock duration in milliseconds
	ExecutionTime int `json:"executionTime,omitempty"`

	Input  interface{} `json:"input,omitempty"`
	Output interface{} `json:"output,omitempty"`
	Error  *NodeError  `json:"error,omitempty"`

	// conditional nodes record which branch was selected
	MatchedCondition string `json:"matchedCondition,omitempty"`
	OutputHandle     string `json:"outputHandle,omitempty"`

	// skipped nodes record why they never executed
	SkipReason string `json:"skipReason,omitempty"`

	ModelUsed  string `json:"modelUsed,omitempty"`
	TokensUsed int    `json:"tokensUsed,omitempty"`
}

// NewNodeResult creates a result stamped with the current time as start
func NewNodeResult(nodeID string, nodeType model.NodeType) *NodeResult {
	now := clock.Now()
	return &NodeResult{
		NodeID:    nodeID,
		NodeType:  nodeType,
		StartTime: &now,
	}
}

// Succeed closes the result with the success status and the given output
func (r *NodeResult) Succeed(output interface{}) *NodeResult {
	r.Status = NodeStatusSuccess
	r.Output = output
	r.closeTimes()
	return r
}

// FailWith closes the result with the error status
func (r *NodeResult) FailWith(err *NodeError) *NodeResult {
	r.Status = NodeStatusError
	r.Error = err
	r.closeTimes()
	return r
}

// Skip closes the result with the skipped status and the given reason
func (r *NodeResult) Skip(reason string) *NodeResult {
	r.Status = NodeStatusSkipped
	r.SkipReason = reason
	r.closeTimes()
	return r
}

func (r *NodeResult) closeTimes() {
	now := clock.Now()
	r.EndTime = &now
	if r.StartTime != nil {
		r.ExecutionTime = int(now.Sub(*r.StartTime) / time.Millisecond)
	}
}

// Clone creates a copy of the node result
func (r *NodeResult) Clone() *NodeResult {
	if r == nil {
		return nil
	}
	clone := *r
	if r.StartTime != nil {
		t := *r.StartTime
		clone.StartTime = &t
	}
	if r.EndTime != nil {
		t := *r.EndTime
		clone.EndTime = &t
	}
	if r.Error != nil {
		e := *r.Error
		clone.Error = &e
	}
	return &clone
}
