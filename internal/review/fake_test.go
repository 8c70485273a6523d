package review

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/dshills/prdoctor/internal/providers"
)

// fakeLLM returns a canned reply and records requests.
type fakeLLM struct {
	content  string
	err      error
	requests []providers.Request
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Complete(ctx context.Context, req providers.Request) (providers.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return providers.Response{}, f.err
	}
	return providers.Response{Content: f.content, TokensUsed: 42}, nil
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
