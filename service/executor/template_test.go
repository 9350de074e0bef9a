package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Execute(t *testing.T) {
	testCases := []struct {
		description string
		config      *TemplateConfig
		inputs      Inputs
		expect      string
		expectError bool
	}{
		{
			description: "input placeholder",
			config:      &TemplateConfig{Template: "Hello {{input}}!"},
			inputs:      Inputs{InputKey: "world"},
			expect:      "Hello world!",
		},
		{
			description: "static variables",
			config: &TemplateConfig{
				Template:  "{{greeting}} {{input}}",
				Variables: map[string]interface{}{"greeting": "Hi"},
			},
			inputs: Inputs{InputKey: "there"},
			expect: "Hi there",
		},
		{
			description: "flow variables override static variables",
			config: &TemplateConfig{
				Template:  "{{name}}",
				Variables: map[string]interface{}{"name": "static"},
			},
			inputs: Inputs{VariablesKey: map[string]interface{}{"name": "flow"}},
			expect: "flow",
		},
		{
			description: "dotted lookup into nested maps",
			config:      &TemplateConfig{Template: "{{user.name}} <{{user.email}}>"},
			inputs: Inputs{VariablesKey: map[string]interface{}{
				"user": map[string]interface{}{"name": "Ada", "email": "ada@example.com"},
			}},
			expect: "Ada <ada@example.com>",
		},
		{
			description: "unresolved placeholder renders empty",
			config:      &TemplateConfig{Template: "[{{missing}}]"},
			inputs:      Inputs{},
			expect:      "[]",
		},
		{
			description: "dotted path through non map renders empty",
			config:      &TemplateConfig{Template: "[{{input.field}}]"},
			inputs:      Inputs{InputKey: "plain string"},
			expect:      "[]",
		},
		{
			description: "html escaping",
			config:      &TemplateConfig{Template: "{{input}}", EscapeHTML: true},
			inputs:      Inputs{InputKey: "<b>&</b>"},
			expect:      "&lt;b&gt;&amp;&lt;/b&gt;",
		},
		{
			description: "empty template is an error",
			config:      &TemplateConfig{},
			inputs:      Inputs{InputKey: "x"},
			expectError: true,
		},
	}

	executor := NewTemplate()
	for _, testCase := range testCases {
		result := executor.Execute(context.Background(), testCase.config, testCase.inputs)
		if testCase.expectError {
			assert.False(t, result.Success, testCase.description)
			continue
		}
		assert.True(t, result.Success, testCase.description)
		assert.Equal(t, testCase.expect, result.Output, testCase.description)
	}
}
