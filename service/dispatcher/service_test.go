package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/ai"
	executionmem "github.com/bruhlabs/flowrun/service/dao/execution/memory"
	flowmem "github.com/bruhlabs/flowrun/service/dao/flow/memory"
	"github.com/bruhlabs/flowrun/service/executor"
	queuemem "github.com/bruhlabs/flowrun/service/messaging/memory"
	"github.com/bruhlabs/flowrun/service/orchestrator"
)

func newTestDispatcher() (*Service, *flowmem.Service, *executionmem.Service) {
	flows := flowmem.New()
	executions := executionmem.New()
	registry := executor.New(ai.NewStatic(ai.WithModels("gpt-test")))
	orch := orchestrator.New(executions, registry)
	queue := queuemem.NewQueue[Task](queuemem.DefaultConfig())
	return New(DefaultConfig(), queue, flows, executions, orch), flows, executions
}

func sampleFlow(id string) *model.Flow {
	flow := model.NewFlow("sample")
	flow.ID = id
	flow.AddNode(model.NewNode("in", model.TypeInput).With("value", "  hi  "))
	flow.AddNode(model.NewNode("clean", model.TypeTextTransformer).With("operations", []interface{}{
		map[string]interface{}{"type": "trim"},
		map[string]interface{}{"type": "uppercase"},
	}))
	flow.AddNode(model.NewNode("out", model.TypeOutput).With("format", "text"))
	flow.Connect("in", "clean").Connect("clean", "out")
	return flow
}

func TestService_Process(t *testing.T) {
	dispatcher, flows, executions := newTestDispatcher()
	ctx := context.Background()

	flow := sampleFlow("flow-1")
	assert.NoError(t, flows.Save(ctx, flow))

	exec := execution.New(flow.ID, nil, nil)
	assert.NoError(t, executions.Save(ctx, exec))

	err := dispatcher.Process(ctx, &Task{ExecutionID: exec.ID})
	assert.NoError(t, err)

	processed, err := executions.Load(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, processed.Status)
	assert.Equal(t, "HI", processed.Data.FinalOutput)
}

func TestService_Process_UnknownExecution(t *testing.T) {
	dispatcher, _, _ := newTestDispatcher()
	err := dispatcher.Process(context.Background(), &Task{ExecutionID: "missing"})
	assert.Error(t, err)
}

func TestService_Process_MissingFlow(t *testing.T) {
	dispatcher, _, executions := newTestDispatcher()
	ctx := context.Background()

	exec := execution.New("no-such-flow", nil, nil)
	assert.NoError(t, executions.Save(ctx, exec))

	err := dispatcher.Process(ctx, &Task{ExecutionID: exec.ID})
	assert.Error(t, err)

	failed, loadErr := executions.Load(ctx, exec.ID)
	assert.NoError(t, loadErr)
	assert.Equal(t, execution.StatusFailed, failed.Status)
	assert.Contains(t, failed.ErrorMessage, "not found")
}

func TestService_Process_TerminalExecutionIsNoop(t *testing.T) {
	dispatcher, _, executions := newTestDispatcher()
	ctx := context.Background()

	exec := execution.New("flow-1", nil, nil)
	exec.MarkCancelled()
	assert.NoError(t, executions.Save(ctx, exec))

	assert.NoError(t, dispatcher.Process(ctx, &Task{ExecutionID: exec.ID}))
	current, err := executions.Load(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusCancelled, current.Status)
}

func TestService_Cancel(t *testing.T) {
	dispatcher, _, executions := newTestDispatcher()
	ctx := context.Background()

	exec := execution.New("flow-1", nil, nil)
	assert.NoError(t, executions.Save(ctx, exec))

	assert.NoError(t, dispatcher.Cancel(ctx, exec.ID))
	cancelled, err := executions.Load(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusCancelled, cancelled.Status)

	// a second cancel of a terminal execution is rejected
	assert.Error(t, dispatcher.Cancel(ctx, exec.ID))
}

func TestService_EnqueueAndWorkers(t *testing.T) {
	dispatcher, flows, executions := newTestDispatcher()
	ctx := context.Background()

	flow := sampleFlow("flow-async")
	assert.NoError(t, flows.Save(ctx, flow))

	exec := execution.New(flow.ID, nil, nil)
	assert.NoError(t, executions.Save(ctx, exec))

	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	assert.NoError(t, dispatcher.Enqueue(ctx, exec.ID))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		current, err := executions.Load(ctx, exec.ID)
		assert.NoError(t, err)
		if current.Status.IsTerminal() {
			assert.Equal(t, execution.StatusCompleted, current.Status)
			assert.Equal(t, "HI", current.Data.FinalOutput)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("execution did not complete in time")
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	assert.NoError(t, config.Validate())

	config.WorkerCount = 0
	assert.Error(t, config.Validate())
}
