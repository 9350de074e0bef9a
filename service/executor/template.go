package executor

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/viant/toolbox"
)

var placeholderExpr = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// TemplateConfig is the template node payload.
type TemplateConfig struct {
	Template   string                 `json:"template"`
	Variables  map[string]interface{} `json:"variables,omitempty"`
	EscapeHTML bool                   `json:"escapeHtml,omitempty"`
}

// Template renders {{name}} placeholders against node variables, the
// primary input and flow variables.
type Template struct{}

// NewTemplate creates a template executor.
func NewTemplate() *Template {
	return &Template{}
}

// Execute renders the template. Placeholders resolve against a merged
// context where input and flow variables override the node's static
// variables; an unresolved path renders as an empty string, never an error.
func (e *Template) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*TemplateConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	if cfg.Template == "" {
		return Fail("Template is empty")
	}
	context := make(map[string]interface{}, len(cfg.Variables)+2)
	for key, value := range cfg.Variables {
		context[key] = value
	}
	context[InputKey] = inputs.Input()
	for key, value := range inputs.Variables() {
		context[key] = value
	}
	rendered := placeholderExpr.ReplaceAllStringFunc(cfg.Template, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		value := nestedValue(context, name)
		if value == nil {
			return ""
		}
		text := toolbox.AsString(value)
		if cfg.EscapeHTML {
			text = html.EscapeString(text)
		}
		return text
	})
	return Succeed(rendered)
}

// nestedValue resolves a dotted key like "user.name" against nested maps.
func nestedValue(context map[string]interface{}, key string) interface{} {
	var value interface{} = context
	for _, part := range strings.Split(key, ".") {
		object, ok := value.(map[string]interface{})
		if !ok {
			return nil
		}
		value, ok = object[part]
		if !ok || value == nil {
			return nil
		}
	}
	return value
}
