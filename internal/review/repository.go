package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dshills/prdoctor/internal/outcome"
	"github.com/dshills/prdoctor/internal/providers"
)

const defaultMaxTokens = 4096

// Analyzer asks the LLM to describe a repository and weight its files.
type Analyzer struct {
	LLM       providers.Completer
	Logger    *slog.Logger
	MaxTokens int
	Diffs     DiffOptions
}

// NewAnalyzer creates an Analyzer. A nil llm makes every call fail with
// ReasonUnavailable.
func NewAnalyzer(llm providers.Completer, logger *slog.Logger) *Analyzer {
	return &Analyzer{LLM: llm, Logger: logger}
}

// Analyze makes exactly one LLM request and validates the response. It never
// returns an error; failures are carried by the outcome.
func (a *Analyzer) Analyze(ctx context.Context, files []string, repoName string, pr *PRContext) outcome.Outcome[RepositoryAnalysis] {
	if a.LLM == nil {
		return outcome.Fail[RepositoryAnalysis](outcome.ReasonUnavailable, errors.New("no LLM provider configured"))
	}

	if pr != nil {
		prepared := *pr
		prepared.Diffs = PrepareDiffs(pr.Diffs, a.Diffs)
		pr = &prepared
	}

	logger(a.Logger).Info("Analyzing repository with LLM",
		"repo", repoName, "files", len(files), "provider", a.LLM.Name(), "pr_context", pr != nil)

	resp, err := a.LLM.Complete(ctx, providers.Request{
		System:    RepositorySystemPrompt(),
		Prompt:    BuildRepositoryPrompt(files, repoName, pr),
		MaxTokens: maxTokensOr(a.MaxTokens),
		JSON:      true,
	})
	if err != nil {
		return outcome.Fail[RepositoryAnalysis](ReasonFor(err), err)
	}

	analysis, err := ParseRepositoryAnalysis(resp.Content)
	if err != nil {
		return outcome.Fail[RepositoryAnalysis](ReasonFor(err), err)
	}
	logger(a.Logger).Debug("Repository analysis parsed",
		"weights", len(analysis.FileWeights), "tokens", resp.TokensUsed)
	return outcome.Ok(analysis)
}

// AnalyzeOrDefault runs Analyze and substitutes DefaultRepositoryAnalysis on
// failure, logging the reason.
func (a *Analyzer) AnalyzeOrDefault(ctx context.Context, files []string, repoName string, pr *PRContext) (RepositoryAnalysis, outcome.Outcome[RepositoryAnalysis]) {
	res := a.Analyze(ctx, files, repoName, pr)
	if !res.OK() {
		logger(a.Logger).Error("Repository analysis failed, using defaults",
			"repo", repoName, "reason", res.Reason(), "error", res.Err())
	}
	return res.OrElse(DefaultRepositoryAnalysis()), res
}

// ReasonFor tags an LLM failure.
func ReasonFor(err error) outcome.Reason {
	switch {
	case err == nil:
		return outcome.ReasonNone
	case errors.Is(err, providers.ErrMissingCredential):
		return outcome.ReasonMissingCredential
	case errors.Is(err, ErrMalformedResponse):
		return outcome.ReasonMalformedResponse
	default:
		return outcome.ReasonUnavailable
	}
}

func maxTokensOr(n int) int {
	if n > 0 {
		return n
	}
	return defaultMaxTokens
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
