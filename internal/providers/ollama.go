package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaHost = "http://localhost:11434"
	ollamaChatPath    = "/v1/chat/completions"
)

// Ollama talks to a local model server through its OpenAI-compatible chat
// endpoint. LM Studio exposes the same endpoint and is served by this type.
type Ollama struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOllama reads OLLAMA_HOST and, for servers that want one,
// PRDOCTOR_OLLAMA_API_KEY. Neither is required.
func NewOllama(model string) (*Ollama, error) {
	return &Ollama{
		apiKey:   os.Getenv("PRDOCTOR_OLLAMA_API_KEY"),
		model:    model,
		endpoint: ollamaEndpoint(os.Getenv("OLLAMA_HOST")),
		// Local models answer slowly on large repository prompts.
		client: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// ollamaEndpoint accepts a bare host, a /v1 base or the full chat URL.
func ollamaEndpoint(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = defaultOllamaHost
	}
	host = strings.TrimSuffix(host, ollamaChatPath)
	host = strings.TrimSuffix(host, "/v1")
	return host + ollamaChatPath
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, req Request) (Response, error) {
	var headers map[string]string
	if o.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + o.apiKey}
	}
	body, err := postJSON(ctx, o.client, o.endpoint, headers, newOpenAIRequest(o.model, req))
	if err != nil {
		return Response{}, err
	}
	return parseOpenAIResponse(body)
}
