package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// Static is an in-process Service implementation with canned model catalogs
// and responses. It backs unit tests and local flow authoring where no real
// provider is reachable.
type Static struct {
	models      map[string]bool
	imageModels map[string]bool
	responses   map[string]string
	imageData   string
	reply       func(prompt string) string
}

// StaticOption customises a Static service.
type StaticOption func(*Static)

// WithModels registers chat-capable model ids
func WithModels(models ...string) StaticOption {
	return func(s *Static) {
		for _, m := range models {
			s.models[m] = true
		}
	}
}

// WithImageModels registers image-capable model ids
func WithImageModels(models ...string) StaticOption {
	return func(s *Static) {
		for _, m := range models {
			s.models[m] = true
			s.imageModels[m] = true
		}
	}
}

// WithResponse registers a canned response for an exact prompt
func WithResponse(prompt, response string) StaticOption {
	return func(s *Static) {
		s.responses[prompt] = response
	}
}

// WithReply sets a fallback prompt->response function
func WithReply(reply func(prompt string) string) StaticOption {
	return func(s *Static) {
		s.reply = reply
	}
}

// WithImageData sets the canned image payload returned for image requests
func WithImageData(data string) StaticOption {
	return func(s *Static) {
		s.imageData = data
	}
}

// NewStatic creates a static AI service
func NewStatic(options ...StaticOption) *Static {
	ret := &Static{
		models:      map[string]bool{},
		imageModels: map[string]bool{},
		responses:   map[string]string{},
		imageData:   "data:image/png;base64,",
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// ValidateModelID reports whether the model id was registered
func (s *Static) ValidateModelID(_ context.Context, model string) bool {
	return s.models[model]
}

// SupportsImageGeneration reports whether the model was registered as
// image-capable
func (s *Static) SupportsImageGeneration(_ context.Context, model string) bool {
	return s.imageModels[model]
}

// SupportsAspectRatio mirrors SupportsImageGeneration for the static service
func (s *Static) SupportsAspectRatio(ctx context.Context, model string) bool {
	return s.SupportsImageGeneration(ctx, model)
}

// AspectRatioDimensions resolves the common aspect ratio tags
func (s *Static) AspectRatioDimensions(aspectRatio string) (int, int, bool) {
	switch aspectRatio {
	case "1:1":
		return 1024, 1024, true
	case "16:9":
		return 1344, 768, true
	case "9:16":
		return 768, 1344, true
	case "4:3":
		return 1184, 864, true
	case "3:4":
		return 864, 1184, true
	}
	return 0, 0, false
}

// FormatMessagePayload builds a plain user message
func (s *Static) FormatMessagePayload(_ context.Context, content string, _ []Attachment, _ string) (Message, error) {
	return Message{Role: "user", Content: content}, nil
}

// ChatWithMessagesStream replays the canned response word by word as
// provider-shaped JSON chunks.
func (s *Static) ChatWithMessagesStream(ctx context.Context, request StreamRequest) (<-chan []byte, error) {
	prompt := s.lastUserContent(request.Messages)
	response, ok := s.responses[prompt]
	if !ok {
		if s.reply != nil {
			response = s.reply(prompt)
		} else {
			response = prompt
		}
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		if s.wantsImage(request.Modalities) {
			chunk := map[string]interface{}{
				"choices": []interface{}{
					map[string]interface{}{
						"delta": map[string]interface{}{
							"images": []interface{}{
								map[string]interface{}{
									"image_url": map[string]interface{}{"url": s.imageData},
								},
							},
						},
					},
				},
				"model": request.Model,
			}
			s.emit(ctx, out, chunk)
			return
		}
		words := strings.SplitAfter(response, " ")
		for _, word := range words {
			if word == "" {
				continue
			}
			chunk := map[string]interface{}{
				"choices": []interface{}{
					map[string]interface{}{
						"delta": map[string]interface{}{"content": word},
					},
				},
				"model": request.Model,
			}
			if !s.emit(ctx, out, chunk) {
				return
			}
		}
	}()
	return out, nil
}

func (s *Static) emit(ctx context.Context, out chan<- []byte, chunk map[string]interface{}) bool {
	data, err := json.Marshal(chunk)
	if err != nil {
		return false
	}
	select {
	case out <- data:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Static) wantsImage(modalities []string) bool {
	for _, m := range modalities {
		if m == "image" {
			return true
		}
	}
	return false
}

func (s *Static) lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if content, ok := messages[i].Content.(string); ok {
			return content
		}
	}
	return ""
}

var _ Service = (*Static)(nil)
