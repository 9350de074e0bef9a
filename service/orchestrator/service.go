package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/dao"
	"github.com/bruhlabs/flowrun/service/executor"
	"github.com/bruhlabs/flowrun/service/validator"
	"github.com/bruhlabs/flowrun/tracing"
)

const (
	skipReasonNoInput   = "No input data - conditional branch not taken"
	skipReasonCancelled = "Execution cancelled"
)

// Service drives one flow execution through its levels: it seeds input
// nodes, dispatches each level concurrently, applies variable side-signals
// between levels, prunes untaken branches and failed subtrees, and persists
// the trace after every node and level.
type Service struct {
	executions dao.Service[string, execution.FlowExecution]
	registry   *executor.Registry
	validator  *validator.Service
	validate   bool
}

// New creates an orchestrator persisting through the given execution store.
func New(executions dao.Service[string, execution.FlowExecution], registry *executor.Registry, options ...Option) *Service {
	ret := &Service{
		executions: executions,
		registry:   registry,
		validator:  validator.New(),
		validate:   true,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Run executes the flow against the given execution record until it reaches
// a terminal status. Node-level failures and cancellations are recorded on
// the execution and do not surface as errors; only engine-internal faults
// (persistence unavailable) return a non-nil error.
func (s *Service) Run(ctx context.Context, flow *model.Flow, exec *execution.FlowExecution) error {
	ctx, span := tracing.StartSpan(ctx, "flow.run", "SERVER")
	span.WithAttributes(map[string]string{
		"flow.id":      flow.ID,
		"execution.id": exec.ID,
	})
	err := s.run(ctx, flow, exec)
	tracing.EndSpan(span, err)
	return err
}

func (s *Service) run(ctx context.Context, flow *model.Flow, exec *execution.FlowExecution) error {
	flow = flow.Clone()
	flow.Normalize()

	if s.validate {
		result := s.validator.Validate(flow.Nodes, flow.Edges)
		if !result.Valid {
			exec.MarkFailed(fmt.Sprintf("Flow validation failed: %s", result.Errors[0].Message), "")
			return s.save(ctx, exec)
		}
	}
	levels := Levels(flow)
	if levels == nil {
		exec.MarkFailed("Flow contains a cycle", "")
		return s.save(ctx, exec)
	}

	exec.MarkRunning()
	if err := s.save(ctx, exec); err != nil {
		return err
	}

	// flow-variable seeding happened when the execution was created; a
	// record decoded without the field still needs a writable map
	variables := exec.Data.Variables
	if variables == nil {
		variables = map[string]interface{}{}
		exec.Data.Variables = variables
	}
	outputs := map[string]*nodeOutput{}
	processed := map[string]bool{}

	// input nodes resolve synchronously before the first level runs
	for _, node := range flow.NodesByType(model.TypeInput) {
		value := resolveInputValue(node, exec.Data.InitialInput, variables)
		exec.AddNodeResult(seedResult(node, value))
		outputs[node.ID] = &nodeOutput{value: value}
		processed[node.ID] = true
	}
	if err := s.save(ctx, exec); err != nil {
		return err
	}

	for _, level := range levels {
		cancelled, err := s.isCancelled(ctx, exec)
		if err != nil {
			return err
		}
		if cancelled {
			s.skipRemaining(flow, processed, exec, skipReasonCancelled)
			exec.MarkCancelled()
			return s.save(ctx, exec)
		}
		failedNodeID, failedMessage, err := s.runLevel(ctx, flow, level, exec, outputs, processed, variables)
		if err != nil {
			return err
		}
		if failedNodeID != "" {
			s.skipDescendants(flow, failedNodeID, processed, exec)
			exec.MarkFailed(failedMessage, failedNodeID)
			return s.save(ctx, exec)
		}
		if err := s.save(ctx, exec); err != nil {
			return err
		}
	}

	exec.MarkCompleted(finalOutput(flow, outputs))
	return s.save(ctx, exec)
}

// runLevel dispatches every ready node of the level concurrently and waits
// for all of them. It returns the id and message of the first failed node;
// already-dispatched siblings run to completion even on failure.
func (s *Service) runLevel(ctx context.Context, flow *model.Flow, level []*model.Node, exec *execution.FlowExecution, outputs map[string]*nodeOutput, processed map[string]bool, variables map[string]interface{}) (string, string, error) {
	type dispatch struct {
		node   *model.Node
		inputs executor.Inputs
	}
	var pending []dispatch
	for _, node := range level {
		if processed[node.ID] {
			continue
		}
		inputs := gatherInputs(flow, node.ID, outputs, snapshotVariables(variables))
		if node.Type.IsTerminal() {
			value := inputs.Input()
			result := seedResult(node, value)
			exec.AddNodeResult(result)
			outputs[node.ID] = &nodeOutput{value: value}
			processed[node.ID] = true
			continue
		}
		if inputs.IsEmpty() && len(flow.Incoming(node.ID)) > 0 {
			result := execution.NewNodeResult(node.ID, node.Type)
			exec.AddNodeResult(result.Skip(skipReasonNoInput))
			processed[node.ID] = true
			continue
		}
		pending = append(pending, dispatch{node: node, inputs: inputs})
	}

	var waitGroup sync.WaitGroup
	var mux sync.Mutex
	var saveErr error
	failedNodeID := ""
	failedMessage := ""

	for i := range pending {
		item := pending[i]
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			nodeResult, execResult := s.runNode(ctx, item.node, item.inputs)

			mux.Lock()
			defer mux.Unlock()
			exec.AddNodeResult(nodeResult)
			processed[item.node.ID] = true
			if nodeResult.Status == execution.NodeStatusSuccess {
				outputs[item.node.ID] = &nodeOutput{
					value:        execResult.Output,
					outputHandle: execResult.OutputHandle,
					conditional:  item.node.Type == model.TypeConditional,
				}
				if execResult.SetVariable != nil {
					variables[execResult.SetVariable.Name] = execResult.SetVariable.Value
				}
				for name, value := range execResult.SetVariables {
					variables[name] = value
				}
			} else if failedNodeID == "" {
				failedNodeID = item.node.ID
				failedMessage = nodeResult.Error.Message
			}
			if err := s.save(ctx, exec); err != nil && saveErr == nil {
				saveErr = err
			}
		}()
	}
	waitGroup.Wait()
	return failedNodeID, failedMessage, saveErr
}

// runNode executes one node under a span, converting executor failures and
// recovered panics into an error node result.
func (s *Service) runNode(ctx context.Context, node *model.Node, inputs executor.Inputs) (nodeResult *execution.NodeResult, execResult *executor.Result) {
	ctx, span := tracing.StartSpan(ctx, "node.execute", "INTERNAL")
	span.WithAttributes(map[string]string{
		"node.id":   node.ID,
		"node.type": string(node.Type),
	})
	nodeResult = execution.NewNodeResult(node.ID, node.Type)
	nodeResult.Input = inputs.Named()

	defer func() {
		if recovered := recover(); recovered != nil {
			crash := &execution.NodeError{
				Message: fmt.Sprintf("%v", recovered),
				Type:    "crash",
			}
			nodeResult.FailWith(crash)
			execResult = executor.Fail(crash.Message)
		}
		var spanErr error
		if nodeResult.Error != nil {
			spanErr = fmt.Errorf("%s", nodeResult.Error.Message)
		}
		tracing.EndSpan(span, spanErr)
	}()

	result, err := s.registry.Execute(ctx, node, inputs)
	if err != nil {
		nodeResult.FailWith(&execution.NodeError{Message: err.Error(), Type: "execution"})
		return nodeResult, executor.Fail(err.Error())
	}
	if !result.Success {
		nodeResult.FailWith(&execution.NodeError{Message: result.Error, Type: "execution"})
		return nodeResult, result
	}
	nodeResult.Succeed(result.Output)
	nodeResult.OutputHandle = result.OutputHandle
	nodeResult.MatchedCondition = result.MatchedCondition
	nodeResult.ModelUsed = result.ModelUsed
	nodeResult.TokensUsed = result.TokensUsed
	return nodeResult, result
}

// skipDescendants walks the edge graph breadth-first from the failed node and
// records a skip for every reachable node that has no result yet.
func (s *Service) skipDescendants(flow *model.Flow, failedNodeID string, processed map[string]bool, exec *execution.FlowExecution) {
	reason := fmt.Sprintf("Upstream node %s failed", failedNodeID)
	visited := map[string]bool{failedNodeID: true}
	queue := []string{failedNodeID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, edge := range flow.Outgoing(current) {
			if visited[edge.Target] {
				continue
			}
			visited[edge.Target] = true
			queue = append(queue, edge.Target)
			if processed[edge.Target] {
				continue
			}
			node := flow.Node(edge.Target)
			result := execution.NewNodeResult(node.ID, node.Type)
			exec.AddNodeResult(result.Skip(reason))
			processed[node.ID] = true
		}
	}
}

// skipRemaining records a skip for every node without a result yet.
func (s *Service) skipRemaining(flow *model.Flow, processed map[string]bool, exec *execution.FlowExecution, reason string) {
	for _, node := range flow.Nodes {
		if processed[node.ID] {
			continue
		}
		result := execution.NewNodeResult(node.ID, node.Type)
		exec.AddNodeResult(result.Skip(reason))
		processed[node.ID] = true
	}
}

// isCancelled re-reads the persisted status; cancellation is observed only
// at level boundaries, nodes already dispatched run to completion.
func (s *Service) isCancelled(ctx context.Context, exec *execution.FlowExecution) (bool, error) {
	if exec.Status == execution.StatusCancelled {
		return true, nil
	}
	current, err := s.executions.Load(ctx, exec.ID)
	if err != nil {
		if err == dao.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return current.Status == execution.StatusCancelled, nil
}

// save persists the trace. An externally flipped cancelled status must not
// be clobbered by an in-flight running snapshot, so it is carried over onto
// the record before writing.
func (s *Service) save(ctx context.Context, exec *execution.FlowExecution) error {
	if exec.Status == execution.StatusRunning {
		if current, err := s.executions.Load(ctx, exec.ID); err == nil && current.Status == execution.StatusCancelled {
			exec.Status = execution.StatusCancelled
		}
	}
	return s.executions.Save(ctx, exec)
}

// seedResult records a synchronously resolved node (input seeding and
// terminal pass-through sinks).
func seedResult(node *model.Node, value interface{}) *execution.NodeResult {
	result := execution.NewNodeResult(node.ID, node.Type)
	result.Input = value
	return result.Succeed(value)
}

// resolveInputValue resolves an input node by priority: the run's initial
// input keyed by variable name, then a flow variable of that name, then the
// node's static value, then the initial input keyed by node id, then the
// empty string.
func resolveInputValue(node *model.Node, initialInput, variables map[string]interface{}) interface{} {
	variableName := node.DataString("variableName")
	if variableName != "" {
		if value, ok := initialInput[variableName]; ok {
			return value
		}
		if value, ok := variables[variableName]; ok {
			return value
		}
	}
	if value, ok := node.Data["value"]; ok && value != nil && value != "" {
		return value
	}
	if value, ok := initialInput[node.ID]; ok {
		return value
	}
	return ""
}

// finalOutput assembles the execution result from the terminal sinks. A
// single output node yields its bare value, multiple yield a node-id keyed
// mapping.
func finalOutput(flow *model.Flow, outputs map[string]*nodeOutput) interface{} {
	var terminals []*model.Node
	for _, node := range flow.Nodes {
		if node.Type.IsTerminal() {
			terminals = append(terminals, node)
		}
	}
	if len(terminals) == 1 {
		if produced, ok := outputs[terminals[0].ID]; ok {
			return produced.value
		}
		return nil
	}
	ret := make(map[string]interface{}, len(terminals))
	for _, node := range terminals {
		if produced, ok := outputs[node.ID]; ok {
			ret[node.ID] = produced.value
		}
	}
	return ret
}
