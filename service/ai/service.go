package ai

import (
	"context"
	"encoding/json"
)

// Message is a single chat message in provider wire shape.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// Attachment is an optional binary payload referenced by a message.
type Attachment struct {
	Name string `json:"name,omitempty"`
	Mime string `json:"mime,omitempty"`
	URL  string `json:"url,omitempty"`
}

// ImageConfig carries image generation parameters resolved from a node's
// aspect ratio setting.
type ImageConfig struct {
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// StreamRequest is the input to a streaming chat call.
type StreamRequest struct {
	Messages    []Message
	Model       string
	Modalities  []string
	ImageConfig *ImageConfig
}

// StreamChunk is the decoded shape of one streamed JSON chunk.
type StreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content,omitempty"`
			Images  []struct {
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images,omitempty"`
		} `json:"delta"`
	} `json:"choices"`
	ID    string `json:"id,omitempty"`
	Model string `json:"model,omitempty"`
	Usage *struct {
		TotalTokens int `json:"total_tokens,omitempty"`
	} `json:"usage,omitempty"`
}

// ParseChunk decodes a raw streamed chunk; executors skip chunks that fail to
// decode rather than aborting the stream.
func ParseChunk(raw []byte) (*StreamChunk, error) {
	chunk := &StreamChunk{}
	if err := json.Unmarshal(raw, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// Service is the narrow AI-provider contract consumed by the llm and
// image_gen executors. Provider clients (model catalogs, retries, transport)
// live behind this interface and are not part of the engine.
type Service interface {
	// ValidateModelID reports whether the model id is known to the provider
	ValidateModelID(ctx context.Context, model string) bool

	// SupportsImageGeneration reports whether the model can produce images
	SupportsImageGeneration(ctx context.Context, model string) bool

	// SupportsAspectRatio reports whether the model honours aspect ratios
	SupportsAspectRatio(ctx context.Context, model string) bool

	// AspectRatioDimensions resolves an aspect ratio tag to pixel dimensions
	AspectRatioDimensions(aspectRatio string) (width, height int, ok bool)

	// FormatMessagePayload builds a provider message from prompt content
	FormatMessagePayload(ctx context.Context, content string, attachments []Attachment, model string) (Message, error)

	// ChatWithMessagesStream starts a streaming chat call; the returned
	// channel yields raw JSON chunks and is closed when the stream ends
	ChatWithMessagesStream(ctx context.Context, request StreamRequest) (<-chan []byte, error)
}
