package execution

import (
	"sync"
	"time"

	"github.com/bruhlabs/flowrun/internal/clock"
	"github.com/bruhlabs/flowrun/internal/idgen"
)

// Status represents the lifecycle state of a flow execution. The status field
// doubles as the cooperative-cancellation flag: external actors flip it to
// StatusCancelled and the orchestrator observes the change at the next level
// boundary.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Data is the replayable trace of one run: the seed input, the mutable flow
// variables, the append-only per-node results and the aggregated final output.
// The orchestrator is its sole writer for the duration of a run.
type Data struct {
	InitialInput map[string]interface{} `json:"initialInput,omitempty"`
	Variables    map[string]interface{} `json:"variables,omitempty"`
	NodeResults  []*NodeResult          `json:"nodeResults"`
	FinalOutput  interface{}            `json:"finalOutput,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// FlowExecution represents a single run of a flow for one actor.
type FlowExecution struct {
	ID     string `json:"id"`
	FlowID string `json:"flowId"`
	UserID string `json:"userId,omitempty"`

	Status Status `json:"status"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	// TotalExecutionTime is the wall-clock duration in milliseconds
	TotalExecutionTime int `json:"totalExecutionTime,omitempty"`

	Data Data `json:"executionData"`

	ErrorMessage string `json:"errorMessage,omitempty"`
	FailedNodeID string `json:"failedNodeId,omitempty"`

	mux sync.RWMutex `json:"-"`
}

// New creates a pending execution for the given flow
func New(flowID string, initialInput, variables map[string]interface{}) *FlowExecution {
	if initialInput == nil {
		initialInput = map[string]interface{}{}
	}
	if variables == nil {
		variables = map[string]interface{}{}
	}
	return &FlowExecution{
		ID:     idgen.New(),
		FlowID: flowID,
		Status: StatusPending,
		Data: Data{
			InitialInput: initialInput,
			Variables:    variables,
			NodeResults:  []*NodeResult{},
		},
	}
}

// MarkRunning transitions the execution into the running state
func (e *FlowExecution) MarkRunning() {
	e.mux.Lock()
	defer e.mux.Unlock()
	now := clock.Now()
	e.StartTime = &now
	e.Status = StatusRunning
}

// MarkCompleted records the final output and closes the execution
func (e *FlowExecution) MarkCompleted(finalOutput interface{}) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Data.FinalOutput = finalOutput
	e.Status = StatusCompleted
	e.close()
}

// MarkFailed records the failure cause and closes the execution. failedNodeID
// is empty for structural failures that are not attributable to one node.
func (e *FlowExecution) MarkFailed(message, failedNodeID string) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.ErrorMessage = message
	e.Data.Error = message
	e.FailedNodeID = failedNodeID
	e.Status = StatusFailed
	e.close()
}

// MarkCancelled closes the execution in the cancelled state
func (e *FlowExecution) MarkCancelled() {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Status = StatusCancelled
	e.close()
}

func (e *FlowExecution) close() {
	now := clock.Now()
	e.EndTime = &now
	if e.StartTime != nil {
		e.TotalExecutionTime = int(now.Sub(*e.StartTime) / time.Millisecond)
	}
}

// AddNodeResult appends a per-node outcome to the trace. Results are appended
// in completion order within a level, not declaration order.
func (e *FlowExecution) AddNodeResult(result *NodeResult) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Data.NodeResults = append(e.Data.NodeResults, result)
}

// NodeResult returns the recorded result for a node or nil
func (e *FlowExecution) NodeResult(nodeID string) *NodeResult {
	e.mux.RLock()
	defer e.mux.RUnlock()
	for _, result := range e.Data.NodeResults {
		if result.NodeID == nodeID {
			return result
		}
	}
	return nil
}

// Clone creates a deep copy of the execution so that the caller can mutate it
// without affecting the original instance.
func (e *FlowExecution) Clone() *FlowExecution {
	if e == nil {
		return nil
	}
	e.mux.RLock()
	defer e.mux.RUnlock()

	clone := &FlowExecution{
		ID:                 e.ID,
		FlowID:             e.FlowID,
		UserID:             e.UserID,
		Status:             e.Status,
		TotalExecutionTime: e.TotalExecutionTime,
		ErrorMessage:       e.ErrorMessage,
		FailedNodeID:       e.FailedNodeID,
	}
	if e.StartTime != nil {
		t := *e.StartTime
		clone.StartTime = &t
	}
	if e.EndTime != nil {
		t := *e.EndTime
		clone.EndTime = &t
	}
	clone.Data = Data{
		FinalOutput: e.Data.FinalOutput,
		Error:       e.Data.Error,
	}
	if e.Data.InitialInput != nil {
		clone.Data.InitialInput = make(map[string]interface{}, len(e.Data.InitialInput))
		for k, v := range e.Data.InitialInput {
			clone.Data.InitialInput[k] = v
		}
	}
	if e.Data.Variables != nil {
		clone.Data.Variables = make(map[string]interface{}, len(e.Data.Variables))
		for k, v := range e.Data.Variables {
			clone.Data.Variables[k] = v
		}
	}
	if e.Data.NodeResults != nil {
		clone.Data.NodeResults = make([]*NodeResult, len(e.Data.NodeResults))
		for i, result := range e.Data.NodeResults {
			clone.Data.NodeResults[i] = result.Clone()
		}
	}
	return clone
}
