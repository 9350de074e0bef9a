package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/structology/conv"
	"github.com/viant/x"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/service/ai"
)

// Registry maps a node type tag to its executor and config type. Registration
// is static at engine construction; execution only reads the registry.
type Registry struct {
	mux       sync.RWMutex
	executors map[model.NodeType]NodeExecutor
	types     *x.Registry
	converter *conv.Converter
}

// Register binds an executor (and optionally its typed config struct) to a
// node type tag.
func (r *Registry) Register(nodeType model.NodeType, executor NodeExecutor, config interface{}) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.executors[nodeType] = executor
	if config != nil {
		rType := reflect.TypeOf(config)
		if rType.Kind() == reflect.Ptr {
			rType = rType.Elem()
		}
		r.types.Register(x.NewType(rType, x.WithName(string(nodeType))))
	}
}

// Lookup returns the executor for a node type or ErrNotRegistered.
func (r *Registry) Lookup(nodeType model.NodeType) (NodeExecutor, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	executor, ok := r.executors[nodeType]
	if !ok {
		return nil, NewNotRegisteredError(nodeType)
	}
	return executor, nil
}

// IsRegistered reports whether the node type has an executor.
func (r *Registry) IsRegistered(nodeType model.NodeType) bool {
	r.mux.RLock()
	defer r.mux.RUnlock()
	_, ok := r.executors[nodeType]
	return ok
}

// Types exposes the config type registry.
func (r *Registry) Types() *x.Registry {
	return r.types
}

// NewConfig decodes the node's raw data payload into a new instance of the
// config struct registered for its type. Node types without a registered
// config receive the raw map.
func (r *Registry) NewConfig(node *model.Node) (interface{}, error) {
	r.mux.RLock()
	configType := r.types.Lookup(string(node.Type))
	r.mux.RUnlock()
	if configType == nil {
		return node.Data, nil
	}
	instance := reflect.New(configType.Type).Interface()
	if len(node.Data) > 0 {
		if err := r.converter.Convert(node.Data, instance); err != nil {
			return nil, fmt.Errorf("failed to convert %s node data: %w", node.Type, err)
		}
	}
	return instance, nil
}

// Execute resolves the executor and typed config for the node and runs it.
// The returned error covers lookup and config decoding only; executor-level
// failures travel inside the Result.
func (r *Registry) Execute(ctx context.Context, node *model.Node, inputs Inputs) (*Result, error) {
	executor, err := r.Lookup(node.Type)
	if err != nil {
		return nil, err
	}
	config, err := r.NewConfig(node)
	if err != nil {
		return nil, err
	}
	return executor.Execute(ctx, config, inputs), nil
}

// New creates a registry pre-populated with the built-in executors. The
// code, http_request and delay tags are declared in the node vocabulary but
// have no execution semantics yet and stay unregistered.
func New(aiService ai.Service) *Registry {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	r := &Registry{
		executors: make(map[model.NodeType]NodeExecutor),
		types:     x.NewRegistry(),
		converter: conv.NewConverter(options),
	}
	r.Register(model.TypeLLM, NewLLM(aiService), &LLMConfig{})
	r.Register(model.TypeImageGen, NewImageGen(aiService), &ImageGenConfig{})
	r.Register(model.TypeJSONExtractor, NewJSONExtractor(), &JSONExtractorConfig{})
	r.Register(model.TypeConditional, NewConditional(), &ConditionalConfig{})
	r.Register(model.TypeMerge, NewMerge(), &MergeConfig{})
	r.Register(model.TypeTextTransformer, NewTextTransformer(), &TextTransformerConfig{})
	r.Register(model.TypeTemplate, NewTemplate(), &TemplateConfig{})
	r.Register(model.TypeVariableGet, NewVariableGet(), &VariableGetConfig{})
	r.Register(model.TypeVariableSet, NewVariableSet(), &VariableSetConfig{})
	return r
}
