package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bruhlabs/flowrun/internal/clock"
	"github.com/bruhlabs/flowrun/model"
)

func TestFlowExecution_Lifecycle(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	clock.NowFunc = func() time.Time { return current }
	defer func() { clock.NowFunc = time.Now }()

	exec := New("flow-1", map[string]interface{}{"topic": "go"}, nil)
	assert.NotEmpty(t, exec.ID)
	assert.Equal(t, StatusPending, exec.Status)
	assert.False(t, exec.Status.IsTerminal())

	exec.MarkRunning()
	assert.Equal(t, StatusRunning, exec.Status)
	assert.Equal(t, base, *exec.StartTime)

	current = base.Add(1500 * time.Millisecond)
	exec.MarkCompleted("done")
	assert.Equal(t, StatusCompleted, exec.Status)
	assert.True(t, exec.Status.IsTerminal())
	assert.Equal(t, "done", exec.Data.FinalOutput)
	assert.Equal(t, 1500, exec.TotalExecutionTime)
}

func TestFlowExecution_MarkFailed(t *testing.T) {
	exec := New("flow-1", nil, nil)
	exec.MarkRunning()
	exec.MarkFailed("Unknown operation type: reverse", "bad")

	assert.Equal(t, StatusFailed, exec.Status)
	assert.Equal(t, "bad", exec.FailedNodeID)
	assert.Equal(t, "Unknown operation type: reverse", exec.ErrorMessage)
	assert.Equal(t, exec.ErrorMessage, exec.Data.Error)
}

func TestFlowExecution_NodeResults(t *testing.T) {
	exec := New("flow-1", nil, nil)
	exec.AddNodeResult(NewNodeResult("in", model.TypeInput).Succeed("hi"))
	exec.AddNodeResult(NewNodeResult("out", model.TypeOutput).Skip("Upstream node in failed"))

	assert.Len(t, exec.Data.NodeResults, 2)
	result := exec.NodeResult("out")
	if assert.NotNil(t, result) {
		assert.Equal(t, NodeStatusSkipped, result.Status)
		assert.Contains(t, result.SkipReason, "Upstream node")
	}
	assert.Nil(t, exec.NodeResult("absent"))
}

func TestFlowExecution_Clone(t *testing.T) {
	exec := New("flow-1", map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2})
	exec.AddNodeResult(NewNodeResult("in", model.TypeInput).Succeed("hi"))

	clone := exec.Clone()
	clone.Data.InitialInput["a"] = 9
	clone.Data.Variables["b"] = 9
	clone.Data.NodeResults[0].Output = "mutated"

	assert.Equal(t, 1, exec.Data.InitialInput["a"])
	assert.Equal(t, 2, exec.Data.Variables["b"])
	assert.Equal(t, "hi", exec.Data.NodeResults[0].Output)
}

func TestNodeResult_FailWith(t *testing.T) {
	result := NewNodeResult("n", model.TypeLLM)
	result.FailWith(&NodeError{Message: "boom", Type: "crash"})
	assert.Equal(t, NodeStatusError, result.Status)
	assert.Equal(t, "crash", result.Error.Type)
	assert.NotNil(t, result.EndTime)
}
