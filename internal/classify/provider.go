package classify

import (
	"context"
	"fmt"
	"os"
)

// Request carries everything a vision provider needs for one classification
// call: the fixed instruction text and the image as inline base64-encodable
// data tagged with its MIME type.
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
	ImageData   []byte
	ImageMIME   string
}

// Provider defines the interface for a vision LLM provider. The returned
// string is the raw model text, expected to be a JSON object.
type Provider interface {
	ClassifyImage(ctx context.Context, req Request) (string, error)
}

// NewProvider returns the provider for the given name.
func NewProvider(name string) (Provider, error) {
	switch name {
	case "gemini":
		return NewGemini(), nil
	case "openai":
		return NewOpenAI(), nil
	case "ollama":
		return NewOllama(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// DefaultModel returns the default model for a provider, honoring the
// provider's model environment variable when set.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-2.5-flash-preview-05-20"
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}
