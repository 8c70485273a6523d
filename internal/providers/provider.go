package providers

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a provider's API key is not set.
var ErrMissingCredential = errors.New("missing credential")

// ErrUnknownProvider is returned by New for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown provider")

// Request contains the data sent to an LLM.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
	// JSON asks the provider to constrain output to a single JSON object
	// where the API supports it.
	JSON        bool
	Temperature float64
}

// Response contains the raw text returned by an LLM.
type Response struct {
	Content    string
	TokensUsed int
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

const defaultMaxTokens = 4096

var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-haiku-4-5",
	"gemini":    "gemini-2.5-flash",
	"ollama":    "llama3.1",
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[canonical(provider)]
}

// New creates a provider by name. An empty model selects DefaultModel.
func New(provider, model string) (Completer, error) {
	name := canonical(provider)
	if model == "" {
		model = defaultModels[name]
	}
	switch name {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini":
		return NewGemini(model)
	case "ollama":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

func canonical(provider string) string {
	switch provider {
	case "", "openai":
		return "openai"
	case "google":
		return "gemini"
	case "lmstudio":
		return "ollama"
	}
	return provider
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
