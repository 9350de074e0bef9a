package executor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/viant/toolbox"
)

// DefaultOutputHandle is the branch taken when no condition matches.
const DefaultOutputHandle = "default"

// Condition is one ordered branch rule of a conditional node.
type Condition struct {
	Operator     string      `json:"operator"`
	Value        interface{} `json:"value,omitempty"`
	OutputHandle string      `json:"outputHandle"`
	Label        string      `json:"label,omitempty"`
}

// ConditionalConfig is the conditional node payload.
type ConditionalConfig struct {
	Conditions          []*Condition `json:"conditions"`
	DefaultOutputHandle string       `json:"defaultOutputHandle,omitempty"`
	CaseSensitive       bool         `json:"caseSensitive,omitempty"`
}

// Conditional routes its input to the output handle of the first matching
// condition, falling back to the default handle.
type Conditional struct{}

// NewConditional creates a conditional executor.
func NewConditional() *Conditional {
	return &Conditional{}
}

// Execute evaluates conditions strictly in list order; the first match wins.
// Numeric operators skip rather than fail when either side is not a number.
func (e *Conditional) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*ConditionalConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	defaultHandle := cfg.DefaultOutputHandle
	if defaultHandle == "" {
		defaultHandle = DefaultOutputHandle
	}
	inputValue := inputs.Input()
	inputStr := ""
	if inputValue != nil {
		inputStr = toolbox.AsString(inputValue)
	}
	if !cfg.CaseSensitive {
		inputStr = strings.ToLower(inputStr)
	}

	for _, condition := range cfg.Conditions {
		compareStr := ""
		if condition.Value != nil {
			compareStr = toolbox.AsString(condition.Value)
		}
		if !cfg.CaseSensitive {
			compareStr = strings.ToLower(compareStr)
		}

		matched := false
		switch condition.Operator {
		case "contains":
			matched = strings.Contains(inputStr, compareStr)
		case "equals":
			matched = inputStr == compareStr
		case "starts_with":
			matched = strings.HasPrefix(inputStr, compareStr)
		case "ends_with":
			matched = strings.HasSuffix(inputStr, compareStr)
		case "regex":
			pattern := compareStr
			if !cfg.CaseSensitive {
				pattern = "(?i)" + pattern
			}
			expr, err := regexp.Compile(pattern)
			if err != nil {
				return Fail(fmt.Sprintf("Invalid regex: %v", err))
			}
			matched = expr.MatchString(inputStr)
		case "greater_than", "less_than", "equals_number":
			inputNum, err := toolbox.ToFloat(inputValue)
			if err != nil {
				continue
			}
			compareNum, err := toolbox.ToFloat(condition.Value)
			if err != nil {
				continue
			}
			switch condition.Operator {
			case "greater_than":
				matched = inputNum > compareNum
			case "less_than":
				matched = inputNum < compareNum
			case "equals_number":
				matched = inputNum == compareNum
			}
		case "is_empty":
			matched = strings.TrimSpace(inputStr) == ""
		case "is_not_empty":
			matched = strings.TrimSpace(inputStr) != ""
		case "length_greater_than", "length_less_than":
			compareNum, err := strconv.Atoi(strings.TrimSpace(compareStr))
			if err != nil {
				continue
			}
			length := utf8.RuneCountInString(inputStr)
			if condition.Operator == "length_greater_than" {
				matched = length > compareNum
			} else {
				matched = length < compareNum
			}
		}

		if matched {
			result := Succeed(inputValue)
			result.OutputHandle = condition.OutputHandle
			result.MatchedCondition = condition.Label
			if result.MatchedCondition == "" {
				result.MatchedCondition = condition.OutputHandle
			}
			return result
		}
	}

	result := Succeed(inputValue)
	result.OutputHandle = defaultHandle
	result.MatchedCondition = DefaultOutputHandle
	return result
}
