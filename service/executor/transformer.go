package executor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/toolbox"
)

// TransformOperation is one step of a text_transformer pipeline. Enabled
// defaults to true when omitted.
type TransformOperation struct {
	Type    string                 `json:"type"`
	Enabled *bool                  `json:"enabled,omitempty"`
	Config  map[string]interface{} `json:"config,omitempty"`
}

// TextTransformerConfig is the text_transformer node payload.
type TextTransformerConfig struct {
	Operations []*TransformOperation `json:"operations"`
}

// TextTransformer applies an ordered pipeline of string operations to the
// primary input.
type TextTransformer struct{}

// NewTextTransformer creates a text_transformer executor.
func NewTextTransformer() *TextTransformer {
	return &TextTransformer{}
}

// Execute applies each enabled operation strictly in order. An unknown or
// misconfigured operation fails the node naming the offending operation.
func (e *TextTransformer) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*TextTransformerConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	if len(cfg.Operations) == 0 {
		return Fail("No operations configured")
	}
	text := ""
	if value := inputs.Input(); value != nil {
		text = toolbox.AsString(value)
	}
	for _, operation := range cfg.Operations {
		if operation.Enabled != nil && !*operation.Enabled {
			continue
		}
		transformed, err := applyOperation(text, operation.Type, operation.Config)
		if err != nil {
			return Fail(fmt.Sprintf("Operation '%s' failed: %v", operation.Type, err))
		}
		text = transformed
	}
	return Succeed(text)
}

func applyOperation(text, opType string, config map[string]interface{}) (string, error) {
	switch opType {
	case "trim":
		return strings.TrimSpace(text), nil
	case "uppercase":
		return strings.ToUpper(text), nil
	case "lowercase":
		return strings.ToLower(text), nil
	case "capitalize":
		return capitalizeWords(text), nil
	case "replace":
		find := configString(config, "find", "")
		if find == "" {
			return "", fmt.Errorf("'find' value is required for replace operation")
		}
		return strings.ReplaceAll(text, find, configString(config, "replace", "")), nil
	case "regex_replace":
		pattern := configString(config, "pattern", "")
		if pattern == "" {
			return "", fmt.Errorf("'pattern' is required for regex_replace operation")
		}
		flags := configString(config, "flags", "")
		var prefix string
		for _, flag := range []string{"i", "m", "s"} {
			if strings.Contains(flags, flag) {
				prefix += flag
			}
		}
		if prefix != "" {
			pattern = "(?" + prefix + ")" + pattern
		}
		expr, err := regexp.Compile(pattern)
		if err != nil {
			return "", err
		}
		return expr.ReplaceAllString(text, configString(config, "replace", "")), nil
	case "split":
		delimiter := configString(config, "delimiter", ",")
		var parts []string
		if raw, ok := config["maxSplits"]; ok && raw != nil {
			maxSplits, err := toolbox.ToInt(raw)
			if err != nil {
				return "", err
			}
			parts = strings.SplitN(text, delimiter, maxSplits+1)
		} else {
			parts = strings.Split(text, delimiter)
		}
		if configString(config, "outputFormat", "array") == "array" {
			quoted := make([]string, len(parts))
			for i, part := range parts {
				quoted[i] = "'" + part + "'"
			}
			return "[" + strings.Join(quoted, ", ") + "]", nil
		}
		return strings.Join(parts, "\n"), nil
	case "join":
		delimiter := configString(config, "delimiter", "")
		return strings.Join(strings.Split(text, "\n"), delimiter), nil
	case "substring":
		start := 0
		if raw, ok := config["start"]; ok && raw != nil {
			value, err := toolbox.ToInt(raw)
			if err != nil {
				return "", err
			}
			start = value
		}
		if start < 0 {
			start += len(text)
		}
		if start < 0 {
			start = 0
		}
		if start > len(text) {
			start = len(text)
		}
		end := len(text)
		if raw, ok := config["end"]; ok && raw != nil {
			value, err := toolbox.ToInt(raw)
			if err != nil {
				return "", err
			}
			end = value
			if end < 0 {
				end += len(text)
			}
		}
		if end > len(text) {
			end = len(text)
		}
		if end < start {
			end = start
		}
		return text[start:end], nil
	case "prefix":
		return configString(config, "value", "") + text, nil
	case "suffix":
		return text + configString(config, "value", ""), nil
	case "remove_whitespace":
		whitespace := regexp.MustCompile(`\s+`)
		switch configString(config, "mode", "all") {
		case "all":
			return whitespace.ReplaceAllString(text, ""), nil
		case "extra":
			return strings.TrimSpace(whitespace.ReplaceAllString(text, " ")), nil
		case "leading":
			return strings.TrimLeft(text, " \t\n\r"), nil
		case "trailing":
			return strings.TrimRight(text, " \t\n\r"), nil
		default:
			return strings.TrimSpace(text), nil
		}
	}
	return "", fmt.Errorf("Unknown operation type: %s", opType)
}

// capitalizeWords upper-cases the first letter of every whitespace-separated
// word and lower-cases the rest.
func capitalizeWords(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	boundary := true
	for _, r := range text {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			boundary = true
			builder.WriteRune(r)
		case boundary:
			builder.WriteString(strings.ToUpper(string(r)))
			boundary = false
		default:
			builder.WriteString(strings.ToLower(string(r)))
		}
	}
	return builder.String()
}

func configString(config map[string]interface{}, key, defaultValue string) string {
	if config == nil {
		return defaultValue
	}
	if raw, ok := config[key]; ok && raw != nil {
		return toolbox.AsString(raw)
	}
	return defaultValue
}
