package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini calls the generateContent endpoint of Google's Generative Language API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini reads GEMINI_API_KEY, falling back to GOOGLE_API_KEY.
func NewGemini(model string) (*Gemini, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable is not set: %w", ErrMissingCredential)
	}
	return &Gemini{
		apiKey:  key,
		model:   model,
		baseURL: geminiAPIURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	base := g.baseURL
	if base == "" {
		base = geminiAPIURL
	}
	// The key travels in a header so it never appears in a logged URL.
	respBody, err := postJSON(ctx, g.client, base+"/"+g.model+":generateContent",
		map[string]string{"x-goog-api-key": g.apiKey}, newGeminiRequest(req))
	if err != nil {
		return Response{}, err
	}
	return parseGeminiResponse(respBody)
}

func newGeminiRequest(req Request) geminiRequest {
	cfg := &geminiGenConfig{MaxOutputTokens: maxTokens(req)}
	if req.Temperature > 0 {
		cfg.Temperature = &req.Temperature
	}
	if req.JSON {
		cfg.ResponseMimeType = "application/json"
	}
	body := geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: cfg,
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	return body
}

// parseGeminiResponse joins the text parts of the first candidate.
func parseGeminiResponse(data []byte) (Response, error) {
	var result geminiResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return Response{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return Response{}, fmt.Errorf("no candidates in response")
	}
	first := result.Candidates[0]
	var text strings.Builder
	for _, part := range first.Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return Response{}, fmt.Errorf("empty candidate (finish reason %q)", first.FinishReason)
	}
	return Response{Content: text.String(), TokensUsed: result.UsageMetadata.TotalTokenCount}, nil
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata geminiUsage       `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsage struct {
	TotalTokenCount int `json:"totalTokenCount"`
}
