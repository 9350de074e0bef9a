package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/toolbox"
)

// MergeConfig is the merge node payload.
type MergeConfig struct {
	MergeStrategy string `json:"mergeStrategy,omitempty"`
}

// Merge combines every edge-supplied input into one value according to the
// configured strategy.
type Merge struct{}

// NewMerge creates a merge executor.
func NewMerge() *Merge {
	return &Merge{}
}

// Execute merges the named inputs. Inputs are visited in sorted key order so
// order-sensitive strategies (array, concat, first, last) are deterministic.
func (e *Merge) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*MergeConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	strategy := cfg.MergeStrategy
	if strategy == "" {
		strategy = "object"
	}
	named := inputs.Named()
	if len(named) == 0 {
		return Fail("No inputs to merge")
	}
	keys := make([]string, 0, len(named))
	for key := range named {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	switch strategy {
	case "object":
		result := make(map[string]interface{}, len(named))
		for key, value := range named {
			result[key] = value
		}
		return Succeed(result)
	case "flatten":
		result := map[string]interface{}{}
		for _, key := range keys {
			object, ok := named[key].(map[string]interface{})
			if !ok {
				return Fail("flatten strategy requires all inputs to be objects")
			}
			for field, value := range object {
				result[field] = value
			}
		}
		return Succeed(result)
	case "array":
		result := make([]interface{}, 0, len(keys))
		for _, key := range keys {
			result = append(result, named[key])
		}
		return Succeed(result)
	case "concat":
		var builder strings.Builder
		for _, key := range keys {
			builder.WriteString(toolbox.AsString(named[key]))
		}
		return Succeed(builder.String())
	case "first":
		return Succeed(named[keys[0]])
	case "last":
		return Succeed(named[keys[len(keys)-1]])
	}
	return Fail(fmt.Sprintf("Unknown merge strategy: %s", strategy))
}
