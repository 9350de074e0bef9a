package flowrun

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/ai"
)

func summarizerFlow() *model.Flow {
	flow := model.NewFlow("summarizer").WithDescription("summarise a topic and route by length")
	flow.ID = "flow-summarizer"
	flow.AddNode(model.NewNode("topic", model.TypeInput).With("variableName", "topic"))
	flow.AddNode(model.NewNode("summarize", model.TypeLLM).
		With("provider", "static").
		With("model", "gpt-test").
		With("userPromptTemplate", "Summarize: {{input}}").
		With("temperature", 0.7))
	flow.AddNode(model.NewNode("result", model.TypeOutput).With("format", "text"))
	flow.Connect("topic", "summarize").Connect("summarize", "result")
	return flow
}

func newEngine() *Service {
	return New(WithAIService(ai.NewStatic(
		ai.WithModels("gpt-test"),
		ai.WithResponse("Summarize: go concurrency", "Goroutines are cheap."),
	)))
}

func TestService_RunSync(t *testing.T) {
	ctx := context.Background()
	srv := newEngine()

	flow := summarizerFlow()
	assert.NoError(t, srv.Flows().Save(ctx, flow))

	exec, err := srv.NewExecution(ctx, flow.ID, map[string]interface{}{"topic": "go concurrency"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusPending, exec.Status)

	exec, err = srv.Run(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, exec.Status)
	assert.Equal(t, "Goroutines are cheap.", exec.Data.FinalOutput)

	summarize := exec.NodeResult("summarize")
	if assert.NotNil(t, summarize) {
		assert.Equal(t, execution.NodeStatusSuccess, summarize.Status)
		assert.Equal(t, "gpt-test", summarize.ModelUsed)
	}
}

func TestService_RunAsync(t *testing.T) {
	ctx := context.Background()
	srv := newEngine()
	srv.Start(ctx)
	defer srv.Stop()

	flow := summarizerFlow()
	assert.NoError(t, srv.Flows().Save(ctx, flow))

	exec, err := srv.NewExecution(ctx, flow.ID, map[string]interface{}{"topic": "go concurrency"}, nil)
	assert.NoError(t, err)
	assert.NoError(t, srv.ExecuteAsync(ctx, exec.ID))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		current, err := srv.Execution(ctx, exec.ID)
		assert.NoError(t, err)
		if current.Status.IsTerminal() {
			assert.Equal(t, execution.StatusCompleted, current.Status)
			assert.Equal(t, "Goroutines are cheap.", current.Data.FinalOutput)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("async execution did not complete in time")
}

func TestService_Validate(t *testing.T) {
	srv := newEngine()

	result := srv.Validate(summarizerFlow())
	assert.True(t, result.Valid, "%v", result.Errors)

	broken := model.NewFlow("broken")
	broken.AddNode(model.NewNode("only", model.TypeTextTransformer))
	result = srv.Validate(broken)
	assert.False(t, result.Valid)
}

func TestService_ZeroValueConfigValidates(t *testing.T) {
	ctx := context.Background()
	srv := New(
		WithConfig(&Config{}),
		WithAIService(ai.NewStatic(ai.WithModels("gpt-test"))),
	)

	// a caller-built Config keeps pre-run validation on
	broken := model.NewFlow("broken")
	broken.ID = "flow-broken"
	broken.AddNode(model.NewNode("only", model.TypeTextTransformer))
	assert.NoError(t, srv.Flows().Save(ctx, broken))

	exec, err := srv.NewExecution(ctx, broken.ID, nil, nil)
	assert.NoError(t, err)
	exec, err = srv.Run(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusFailed, exec.Status)
	assert.Contains(t, exec.ErrorMessage, "validation failed")
}

func TestService_VariableSeeding(t *testing.T) {
	ctx := context.Background()
	srv := newEngine()

	flow := model.NewFlow("seeded").WithVariable("greeting", "hello")
	flow.ID = "flow-seeded"
	flow.AddNode(model.NewNode("in", model.TypeInput).With("variableName", "greeting"))
	flow.AddNode(model.NewNode("out", model.TypeOutput).With("format", "text"))
	flow.Connect("in", "out")
	assert.NoError(t, srv.Flows().Save(ctx, flow))

	// flow variable is the default
	exec, err := srv.NewExecution(ctx, flow.ID, nil, nil)
	assert.NoError(t, err)
	exec, err = srv.Run(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, "hello", exec.Data.FinalOutput)

	// a per-run override wins
	exec, err = srv.NewExecution(ctx, flow.ID, nil, map[string]interface{}{"greeting": "hola"})
	assert.NoError(t, err)
	exec, err = srv.Run(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, "hola", exec.Data.FinalOutput)
}
