package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditional_Execute(t *testing.T) {
	testCases := []struct {
		description   string
		config        *ConditionalConfig
		input         interface{}
		expectHandle  string
		expectMatched string
		expectError   bool
	}{
		{
			description: "first matching condition wins",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "contains", Value: "x", OutputHandle: "h1"},
				},
			},
			input:         "xyz",
			expectHandle:  "h1",
			expectMatched: "h1",
		},
		{
			description: "no match falls to default handle",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "contains", Value: "x", OutputHandle: "h1"},
				},
			},
			input:         "abc",
			expectHandle:  "default",
			expectMatched: "default",
		},
		{
			description: "label reported as matched condition",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "equals", Value: "yes", OutputHandle: "approved", Label: "user approved"},
				},
			},
			input:         "YES",
			expectHandle:  "approved",
			expectMatched: "user approved",
		},
		{
			description: "case sensitive comparison",
			config: &ConditionalConfig{
				CaseSensitive: true,
				Conditions: []*Condition{
					{Operator: "equals", Value: "yes", OutputHandle: "approved"},
				},
			},
			input:         "YES",
			expectHandle:  "default",
			expectMatched: "default",
		},
		{
			description: "numeric operator",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "greater_than", Value: 10, OutputHandle: "big"},
				},
			},
			input:         "42",
			expectHandle:  "big",
			expectMatched: "big",
		},
		{
			description: "numeric operator skips non numeric input",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "greater_than", Value: 10, OutputHandle: "big"},
					{Operator: "is_not_empty", OutputHandle: "text"},
				},
			},
			input:         "not a number",
			expectHandle:  "text",
			expectMatched: "text",
		},
		{
			description: "regex ignores case by default",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "regex", Value: "^HEL+O$", OutputHandle: "greeting"},
				},
			},
			input:         "hello",
			expectHandle:  "greeting",
			expectMatched: "greeting",
		},
		{
			description: "invalid regex fails the node",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "regex", Value: "([", OutputHandle: "h1"},
				},
			},
			input:       "anything",
			expectError: true,
		},
		{
			description: "is_empty matches whitespace only input",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "is_empty", OutputHandle: "empty"},
				},
			},
			input:         "   ",
			expectHandle:  "empty",
			expectMatched: "empty",
		},
		{
			description: "length comparison",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "length_greater_than", Value: "3", OutputHandle: "long"},
				},
			},
			input:         "abcd",
			expectHandle:  "long",
			expectMatched: "long",
		},
		{
			description: "length counts characters not bytes",
			config: &ConditionalConfig{
				Conditions: []*Condition{
					{Operator: "length_less_than", Value: "6", OutputHandle: "short"},
				},
			},
			input:         "héllo", // 6 bytes, 5 characters
			expectHandle:  "short",
			expectMatched: "short",
		},
		{
			description: "custom default handle",
			config: &ConditionalConfig{
				DefaultOutputHandle: "fallthrough",
				Conditions: []*Condition{
					{Operator: "equals", Value: "never", OutputHandle: "h1"},
				},
			},
			input:         "abc",
			expectHandle:  "fallthrough",
			expectMatched: "default",
		},
	}

	executor := NewConditional()
	for _, testCase := range testCases {
		result := executor.Execute(context.Background(), testCase.config, Inputs{InputKey: testCase.input})
		if testCase.expectError {
			assert.False(t, result.Success, testCase.description)
			assert.NotEmpty(t, result.Error, testCase.description)
			continue
		}
		assert.True(t, result.Success, testCase.description)
		assert.EqualValues(t, testCase.input, result.Output, testCase.description)
		assert.Equal(t, testCase.expectHandle, result.OutputHandle, testCase.description)
		assert.Equal(t, testCase.expectMatched, result.MatchedCondition, testCase.description)
	}
}
