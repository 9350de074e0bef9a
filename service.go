package flowrun

import (
	"context"
	"fmt"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/ai"
	"github.com/bruhlabs/flowrun/service/dao"
	executionmem "github.com/bruhlabs/flowrun/service/dao/execution/memory"
	flowmem "github.com/bruhlabs/flowrun/service/dao/flow/memory"
	"github.com/bruhlabs/flowrun/service/dispatcher"
	"github.com/bruhlabs/flowrun/service/executor"
	"github.com/bruhlabs/flowrun/service/messaging"
	queuemem "github.com/bruhlabs/flowrun/service/messaging/memory"
	"github.com/bruhlabs/flowrun/service/orchestrator"
	"github.com/bruhlabs/flowrun/service/validator"
)

// Service is the engine facade: it wires the flow and execution stores, the
// executor registry, the orchestrator and the async dispatcher into one
// entry point.
type Service struct {
	config       *Config
	aiService    ai.Service
	flows        dao.Service[string, model.Flow]
	executions   dao.Service[string, execution.FlowExecution]
	queue        messaging.Queue[dispatcher.Task]
	registry     *executor.Registry
	validator    *validator.Service
	orchestrator *orchestrator.Service
	dispatcher   *dispatcher.Service
}

// New creates an engine. Without options it runs fully in process: in-memory
// stores, an in-memory queue and the static AI service.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.registry = executor.New(s.aiService)
	var orchestratorOptions []orchestrator.Option
	if s.validator != nil {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithValidator(s.validator))
	} else {
		s.validator = validator.New()
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithValidator(s.validator))
	}
	if s.config.SkipValidation {
		orchestratorOptions = append(orchestratorOptions, orchestrator.WithoutValidation())
	}
	s.orchestrator = orchestrator.New(s.executions, s.registry, orchestratorOptions...)
	s.dispatcher = dispatcher.New(s.config.Dispatcher, s.queue, s.flows, s.executions, s.orchestrator)
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.aiService == nil {
		s.aiService = ai.NewStatic()
	}
	if s.flows == nil {
		s.flows = flowmem.New()
	}
	if s.executions == nil {
		s.executions = executionmem.New()
	}
	if s.queue == nil {
		s.queue = queuemem.NewQueue[dispatcher.Task](queuemem.DefaultConfig())
	}
}

// Flows exposes the flow definition store.
func (s *Service) Flows() dao.Service[string, model.Flow] {
	return s.flows
}

// Executions exposes the execution store.
func (s *Service) Executions() dao.Service[string, execution.FlowExecution] {
	return s.executions
}

// Registry exposes the executor registry so callers can register additional
// node types.
func (s *Service) Registry() *executor.Registry {
	return s.registry
}

// Validate runs the structural validation of a flow without executing it.
func (s *Service) Validate(flow *model.Flow) *validator.Result {
	clone := flow.Clone()
	clone.Normalize()
	return s.validator.Validate(clone.Nodes, clone.Edges)
}

// NewExecution creates and persists a pending execution for the given flow.
// Variables are seeded from the flow definition, overridden by the supplied
// values.
func (s *Service) NewExecution(ctx context.Context, flowID string, initialInput, variables map[string]interface{}) (*execution.FlowExecution, error) {
	flow, err := s.flows.Load(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow %s: %w", flowID, err)
	}
	seeded := make(map[string]interface{}, len(flow.Variables)+len(variables))
	for name, value := range flow.Variables {
		seeded[name] = value
	}
	for name, value := range variables {
		seeded[name] = value
	}
	exec := execution.New(flow.ID, initialInput, seeded)
	if err := s.executions.Save(ctx, exec); err != nil {
		return nil, err
	}
	return exec, nil
}

// Run executes a persisted execution synchronously and returns its final
// state. Node-level failures are recorded on the execution, not returned.
func (s *Service) Run(ctx context.Context, executionID string) (*execution.FlowExecution, error) {
	if err := s.dispatcher.Process(ctx, &dispatcher.Task{ExecutionID: executionID}); err != nil {
		return nil, err
	}
	return s.executions.Load(ctx, executionID)
}

// ExecuteAsync enqueues a persisted execution for the dispatcher worker
// pool. Start must have been called for the task to be picked up.
func (s *Service) ExecuteAsync(ctx context.Context, executionID string) error {
	return s.dispatcher.Enqueue(ctx, executionID)
}

// Cancel requests cooperative cancellation; the current level finishes and
// the run stops at the next level boundary.
func (s *Service) Cancel(ctx context.Context, executionID string) error {
	return s.dispatcher.Cancel(ctx, executionID)
}

// Execution returns the persisted execution with its node-level trace.
func (s *Service) Execution(ctx context.Context, executionID string) (*execution.FlowExecution, error) {
	return s.executions.Load(ctx, executionID)
}

// Start launches the dispatcher worker pool.
func (s *Service) Start(ctx context.Context) {
	s.dispatcher.Start(ctx)
}

// Stop terminates the dispatcher worker pool, waiting for in-flight runs.
func (s *Service) Stop() {
	s.dispatcher.Stop()
}
