package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/dao"
	"github.com/bruhlabs/flowrun/service/messaging"
	"github.com/bruhlabs/flowrun/service/orchestrator"
	"github.com/bruhlabs/flowrun/tracing"
)

// Task is the queued request to run one persisted execution out of band.
type Task struct {
	ExecutionID string `json:"executionId"`
}

// Config controls the dispatcher worker pool.
type Config struct {
	// WorkerCount is the number of concurrent task consumers
	WorkerCount int `json:"workerCount" yaml:"workerCount"`
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{WorkerCount: 4}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("dispatcher: worker count must be positive, got %d", c.WorkerCount)
	}
	return nil
}

// Service moves flow executions off the request path: Enqueue publishes a
// task, a pool of workers consumes tasks and drives each execution through
// the orchestrator, and Cancel flips the persisted status that the
// orchestrator polls at level boundaries.
type Service struct {
	config       Config
	queue        messaging.Queue[Task]
	flows        dao.Service[string, model.Flow]
	executions   dao.Service[string, execution.FlowExecution]
	orchestrator *orchestrator.Service

	mux     sync.Mutex
	cancel  context.CancelFunc
	stopped sync.WaitGroup
}

// New creates a dispatcher.
func New(config Config, queue messaging.Queue[Task], flows dao.Service[string, model.Flow], executions dao.Service[string, execution.FlowExecution], orch *orchestrator.Service) *Service {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Service{
		config:       config,
		queue:        queue,
		flows:        flows,
		executions:   executions,
		orchestrator: orch,
	}
}

// Enqueue publishes an execution request for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, executionID string) error {
	ctx, span := tracing.StartSpan(ctx, "dispatcher.enqueue", "PRODUCER")
	span.WithAttributes(map[string]string{"execution.id": executionID})
	err := s.queue.Publish(ctx, &Task{ExecutionID: executionID})
	tracing.EndSpan(span, err)
	return err
}

// Cancel requests cooperative cancellation of a running execution. A pending
// execution is cancelled outright; a running one keeps executing its current
// level and stops at the next level boundary.
func (s *Service) Cancel(ctx context.Context, executionID string) error {
	exec, err := s.executions.Load(ctx, executionID)
	if err != nil {
		return err
	}
	if exec.Status.IsTerminal() {
		return fmt.Errorf("dispatcher: execution %s already %s", executionID, exec.Status)
	}
	exec.Status = execution.StatusCancelled
	return s.executions.Save(ctx, exec)
}

// Start launches the worker pool. Workers run until Stop is called or the
// context is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := 0; i < s.config.WorkerCount; i++ {
		s.stopped.Add(1)
		go s.worker(ctx)
	}
}

// Stop terminates the worker pool and waits for in-flight tasks to finish.
func (s *Service) Stop() {
	s.mux.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mux.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.stopped.Wait()
}

func (s *Service) worker(ctx context.Context) {
	defer s.stopped.Done()
	for {
		message, err := s.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			continue
		}
		task := message.T()
		if err := s.process(ctx, task); err != nil {
			log.Printf("failed to process execution %s: %v", task.ExecutionID, err)
			_ = message.Nack(err)
			continue
		}
		_ = message.Ack()
	}
}

// Process runs one queued task to completion. Infrastructure errors (store
// unavailable, unknown ids) surface so the queue can retry or dead-letter
// the task; node-level failures are recorded on the execution and count as
// processed.
func (s *Service) Process(ctx context.Context, task *Task) error {
	return s.process(ctx, task)
}

func (s *Service) process(ctx context.Context, task *Task) error {
	ctx, span := tracing.StartSpan(ctx, "dispatcher.process", "CONSUMER")
	span.WithAttributes(map[string]string{"execution.id": task.ExecutionID})
	err := s.run(ctx, task)
	tracing.EndSpan(span, err)
	return err
}

func (s *Service) run(ctx context.Context, task *Task) error {
	exec, err := s.executions.Load(ctx, task.ExecutionID)
	if err != nil {
		return fmt.Errorf("dispatcher: failed to load execution %s: %w", task.ExecutionID, err)
	}
	if exec.Status.IsTerminal() {
		return nil
	}
	flow, err := s.flows.Load(ctx, exec.FlowID)
	if err != nil {
		exec.MarkFailed(fmt.Sprintf("Flow %s not found", exec.FlowID), "")
		_ = s.executions.Save(ctx, exec)
		return fmt.Errorf("dispatcher: failed to load flow %s: %w", exec.FlowID, err)
	}
	return s.orchestrator.Run(ctx, flow, exec)
}
