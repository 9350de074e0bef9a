package flowrun

import (
	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/ai"
	"github.com/bruhlabs/flowrun/service/dao"
	"github.com/bruhlabs/flowrun/service/dispatcher"
	"github.com/bruhlabs/flowrun/service/messaging"
	"github.com/bruhlabs/flowrun/service/validator"
)

// Option customises the engine facade.
type Option func(s *Service)

// WithConfig sets the engine configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithAIService sets the AI provider collaborator used by the llm and
// image_gen executors
func WithAIService(service ai.Service) Option {
	return func(s *Service) {
		s.aiService = service
	}
}

// WithFlowDAO sets the flow definition store
func WithFlowDAO(flows dao.Service[string, model.Flow]) Option {
	return func(s *Service) {
		s.flows = flows
	}
}

// WithExecutionDAO sets the execution store
func WithExecutionDAO(executions dao.Service[string, execution.FlowExecution]) Option {
	return func(s *Service) {
		s.executions = executions
	}
}

// WithQueue sets the dispatch queue
func WithQueue(queue messaging.Queue[dispatcher.Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithValidator sets the graph validator
func WithValidator(v *validator.Service) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithWorkers sets the dispatcher worker count
func WithWorkers(count int) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Dispatcher.WorkerCount = count
	}
}
