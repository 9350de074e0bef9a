package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_Execute(t *testing.T) {
	testCases := []struct {
		description string
		strategy    string
		inputs      Inputs
		expect      interface{}
		expectError bool
	}{
		{
			description: "concat joins values in key order",
			strategy:    "concat",
			inputs:      Inputs{"a": "foo", "b": "bar"},
			expect:      "foobar",
		},
		{
			description: "array collects values in key order",
			strategy:    "array",
			inputs:      Inputs{"a": "foo", "b": "bar"},
			expect:      []interface{}{"foo", "bar"},
		},
		{
			description: "object keeps the handle mapping",
			strategy:    "object",
			inputs:      Inputs{"a": "foo", "b": "bar"},
			expect:      map[string]interface{}{"a": "foo", "b": "bar"},
		},
		{
			description: "flatten shallow merges object inputs",
			strategy:    "flatten",
			inputs: Inputs{
				"a": map[string]interface{}{"x": 1},
				"b": map[string]interface{}{"y": 2},
			},
			expect: map[string]interface{}{"x": 1, "y": 2},
		},
		{
			description: "flatten rejects non object input",
			strategy:    "flatten",
			inputs:      Inputs{"a": map[string]interface{}{"x": 1}, "b": "plain"},
			expectError: true,
		},
		{
			description: "first picks the lowest key",
			strategy:    "first",
			inputs:      Inputs{"b": "bar", "a": "foo"},
			expect:      "foo",
		},
		{
			description: "last picks the highest key",
			strategy:    "last",
			inputs:      Inputs{"b": "bar", "a": "foo"},
			expect:      "bar",
		},
		{
			description: "empty strategy defaults to object",
			inputs:      Inputs{"a": "foo"},
			expect:      map[string]interface{}{"a": "foo"},
		},
		{
			description: "no inputs is an error",
			strategy:    "concat",
			inputs:      Inputs{},
			expectError: true,
		},
		{
			description: "variables snapshot does not count as input",
			strategy:    "concat",
			inputs:      Inputs{VariablesKey: map[string]interface{}{"k": "v"}},
			expectError: true,
		},
		{
			description: "unknown strategy is an error",
			strategy:    "zip",
			inputs:      Inputs{"a": "foo"},
			expectError: true,
		},
	}

	executor := NewMerge()
	for _, testCase := range testCases {
		result := executor.Execute(context.Background(), &MergeConfig{MergeStrategy: testCase.strategy}, testCase.inputs)
		if testCase.expectError {
			assert.False(t, result.Success, testCase.description)
			assert.NotEmpty(t, result.Error, testCase.description)
			continue
		}
		assert.True(t, result.Success, testCase.description)
		assert.EqualValues(t, testCase.expect, result.Output, testCase.description)
	}
}
