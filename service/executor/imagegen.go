package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/toolbox"

	"github.com/bruhlabs/flowrun/service/ai"
)

// ImageGenConfig is the image_gen node payload.
type ImageGenConfig struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	PromptTemplate string `json:"promptTemplate,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
}

// ImageGen generates an image from a rendered prompt via the provider
// service.
type ImageGen struct {
	service ai.Service
}

// NewImageGen creates an image_gen executor backed by the given provider
// service.
func NewImageGen(service ai.Service) *ImageGen {
	return &ImageGen{service: service}
}

// Execute validates the model's image capability, streams the generation
// call and returns the image payload. When the stream carries no image but
// produced text, the text stands in as image data.
func (e *ImageGen) Execute(ctx context.Context, config interface{}, inputs Inputs) *Result {
	cfg, ok := config.(*ImageGenConfig)
	if !ok {
		return Fail(NewInvalidConfigError(config))
	}
	template := cfg.PromptTemplate
	if template == "" {
		template = "{{input}}"
	}
	aspectRatio := cfg.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}
	if !e.service.ValidateModelID(ctx, cfg.Model) {
		return Fail(fmt.Sprintf("Invalid model ID: %s", cfg.Model))
	}
	if !e.service.SupportsImageGeneration(ctx, cfg.Model) {
		return Fail(fmt.Sprintf("Model %s does not support image generation", cfg.Model))
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

	var imageConfig *ai.ImageConfig
	if e.service.SupportsAspectRatio(ctx, cfg.Model) {
		if width, height, ok := e.service.AspectRatioDimensions(aspectRatio); ok {
			imageConfig = &ai.ImageConfig{AspectRatio: aspectRatio, Width: width, Height: height}
		}
	}

	stream, err := e.service.ChatWithMessagesStream(ctx, ai.StreamRequest{
		Messages:    []ai.Message{message},
		Model:       cfg.Model,
		Modalities:  []string{"image"},
		ImageConfig: imageConfig,
	})
	if err != nil {
		return Fail(err.Error())
	}

	var response strings.Builder
	imageData := ""
	tokensUsed := 0
	for raw := range stream {
		chunk, err := ai.ParseChunk(raw)
		if err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			delta := chunk.Choices[0].Delta
			response.WriteString(delta.Content)
			if len(delta.Images) > 0 {
				imageData = delta.Images[0].ImageURL.URL
			}
		}
		if chunk.Usage != nil {
			tokensUsed = chunk.Usage.TotalTokens
		}
	}
	if imageData == "" && response.Len() > 0 {
		imageData = response.String()
	}
	if imageData == "" {
		return Fail("No image was generated. The model may not support image generation.")
	}
	result := Succeed(map[string]interface{}{
		"imageData":   imageData,
		"prompt":      prompt,
		"aspectRatio": aspectRatio,
		"model":       cfg.Model,
	})
	result.ModelUsed = cfg.Model
	result.TokensUsed = tokensUsed
	return result
}
