package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/toolbox"

	"github.com/bruhlabs/flowrun/service/ai"
)

// LLMConfig is the llm node payload.
type LLMConfig struct {
	Provider           string  `json:"provider"`
	Model              string  `json:"model"`
	SystemPrompt       string  `json:"systemPrompt,omitempty"`
	UserPromptTemplate string  `json:"userPromptTemplate,omitempty"`
	Temperature        float64 `json:"temperature,omitempty"`
}

// LLM runs a prompt template against a chat model and accumulates the
// streamed response text.
type LLM struct {
	service ai.Service
}

// NewLLM creates an llm executor backed by the given provider service.
func NewLLM(service ai.Service) *LLM {
	return &LLM{service: service}
}

// Execute renders the prompt template with the primary input, streams the
// chat completion and returns the accumulated text.
func (e *LLM) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*LLMConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	template := cfg.UserPromptTemplate
	if template == "" {
		template = "{{input}}"
	}
	if !e.service.ValidateModelID(ctx, cfg.Model) {
		return Fail(fmt.Sprintf("Invalid model ID: %s", cfg.Model))
	}
	inputText := ""
	if value := inputs.Input(); value != nil {
		inputText = toolbox.AsString(value)
	}
	prompt := strings.ReplaceAll(template, "{{input}}", inputText)
	if strings.TrimSpace(prompt) == "" {
		return Fail("Prompt is empty. Please provide input or configure the prompt template.")
	}
	message, err := e.service.FormatMessagePayload(ctx, prompt, nil, cfg.Model)
	if err != nil {
		return Fail(err.Error())
	}
	messages := []ai.Message{}
	if cfg.SystemPrompt != "" {
		messages = append(messages, ai.Message{Role: "system", Content: cfg.SystemPrompt})
	}
	messages = append(messages, message)

	stream, err := e.service.ChatWithMessagesStream(ctx, ai.StreamRequest{
		Messages: messages,
		Model:    cfg.Model,
	})
	if err != nil {
		return Fail(err.Error())
	}
	var response strings.Builder
	tokensUsed := 0
	for raw := range stream {
		chunk, err := ai.ParseChunk(raw)
		if err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			response.WriteString(chunk.Choices[0].Delta.Content)
		}
		if chunk.Usage != nil {
			tokensUsed = chunk.Usage.TotalTokens
		}
	}
	result := Succeed(response.String())
	result.ModelUsed = cfg.Model
	result.TokensUsed = tokensUsed
	return result
}
