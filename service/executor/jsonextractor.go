package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/toolbox"
)

// Extraction is one key/path pair evaluated by the json_extractor node.
type Extraction struct {
	Key      string      `json:"key"`
	Path     string      `json:"path"`
	Fallback interface{} `json:"fallback,omitempty"`
}

// JSONExtractorConfig is the json_extractor node payload.
type JSONExtractorConfig struct {
	Extractions  []*Extraction `json:"extractions"`
	StrictMode   bool          `json:"strictMode,omitempty"`
	OutputFormat string        `json:"outputFormat,omitempty"`
}

// JSONExtractor pulls values out of a JSON document by path expressions.
type JSONExtractor struct{}

// NewJSONExtractor creates a json_extractor executor.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// Execute parses the primary input as JSON and evaluates every extraction.
// A missing path uses the fallback when present; without a fallback strict
// mode turns it into an error, otherwise the key maps to nil.
func (e *JSONExtractor) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*JSONExtractorConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	raw := ""
	if value := inputs.Input(); value != nil {
		raw = toolbox.AsString(value)
	}
	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Fail(fmt.Sprintf("Invalid JSON: %v", err))
	}
	results := map[string]interface{}{}
	var errors []string
	for _, extraction := range cfg.Extractions {
		path := extraction.Path
		if path == "" {
			path = "$"
		}
		value, found, err := extractPath(data, path)
		switch {
		case err != nil:
			if cfg.StrictMode {
				errors = append(errors, fmt.Sprintf("Error extracting '%s': %v", extraction.Key, err))
			} else {
				results[extraction.Key] = extraction.Fallback
			}
		case found:
			if cfg.OutputFormat == "array" {
				results[extraction.Key] = []interface{}{value}
			} else {
				results[extraction.Key] = value
			}
		case extraction.Fallback != nil:
			results[extraction.Key] = extraction.Fallback
		case cfg.StrictMode:
			errors = append(errors, fmt.Sprintf("Path '%s' not found for key '%s'", path, extraction.Key))
		default:
			results[extraction.Key] = nil
		}
	}
	if len(errors) > 0 {
		result := Fail(strings.Join(errors, "; "))
		result.Output = results
		return result
	}
	if len(cfg.Extractions) == 1 && cfg.OutputFormat != "array" {
		for _, value := range results {
			return Succeed(value)
		}
	}
	return Succeed(results)
}

// extractPath evaluates a dotted path with optional [idx] subscripts against
// decoded JSON, e.g. "$.items[0].name" or "user.email". The "$" root prefix
// is optional.
func extractPath(data interface{}, path string) (interface{}, bool, error) {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return data, true, nil
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, err := parseSegment(segment)
		if err != nil {
			return nil, false, err
		}
		if name != "" {
			object, ok := current.(map[string]interface{})
			if !ok {
				return nil, false, nil
			}
			current, ok = object[name]
			if !ok {
				return nil, false, nil
			}
		}
		for _, index := range indexes {
			items, ok := current.([]interface{})
			if !ok {
				return nil, false, nil
			}
			if index < 0 {
				index += len(items)
			}
			if index < 0 || index >= len(items) {
				return nil, false, nil
			}
			current = items[index]
		}
	}
	return current, true, nil
}

// parseSegment splits "items[0][1]" into the field name and subscript list.
func parseSegment(segment string) (string, []int, error) {
	name := segment
	var indexes []int
	for {
		open := strings.IndexByte(name, '[')
		if open == -1 {
			break
		}
		closing := strings.IndexByte(name[open:], ']')
		if closing == -1 {
			return "", nil, fmt.Errorf("malformed path segment %q", segment)
		}
		index, err := strconv.Atoi(name[open+1 : open+closing])
		if err != nil {
			return "", nil, fmt.Errorf("malformed subscript in segment %q", segment)
		}
		indexes = append(indexes, index)
		name = name[:open] + name[open+closing+1:]
	}
	return name, indexes, nil
}
