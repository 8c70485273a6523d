package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dshills/prdoctor/internal/outcome"
	"github.com/dshills/prdoctor/internal/providers"
	"github.com/dshills/prdoctor/internal/scoring"
)

// Reviewer scores a PR and asks the LLM for a qualitative review.
type Reviewer struct {
	LLM       providers.Completer
	Logger    *slog.Logger
	MaxTokens int
	Diffs     DiffOptions
}

// NewReviewer creates a Reviewer.
func NewReviewer(llm providers.Completer, logger *slog.Logger) *Reviewer {
	return &Reviewer{LLM: llm, Logger: logger}
}

// ReviewResult is a merged PR review plus the branch each half took.
type ReviewResult struct {
	Review      PRReview
	Scoring     scoring.Result
	Qualitative outcome.Outcome[PRReview]
}

// Review computes the deterministic score, then the qualitative review.
// The score is never influenced by the LLM call or its failure.
func (r *Reviewer) Review(ctx context.Context, stats scoring.Stats, diffs []Diff, repoName string, analysis RepositoryAnalysis, cfg scoring.Config) ReviewResult {
	log := logger(r.Logger)

	scored := scoring.Score(stats, cfg)
	log.Info("PR scored",
		"repo", repoName, "score", scored.Score, "raw", scored.Raw,
		"changed_files", stats.ChangedFiles, "additions", stats.Additions, "deletions", stats.Deletions)
	if scored.Flagged {
		log.Warn("PR flagged: score below threshold", "score", scored.Score, "threshold", cfg.Threshold)
	}

	qual := r.qualitative(ctx, repoName, analysis, diffs)
	merged := qual.OrElseFunc(func(reason outcome.Reason, err error) PRReview {
		log.Error("PR review failed, using defaults", "repo", repoName, "reason", reason, "error", err)
		return DefaultQualitative()
	})
	merged.Scores = merged.Scores.Or(analysis.Scores)
	merged.Score = scored.Score
	merged.Flagged = scored.Flagged

	return ReviewResult{Review: merged, Scoring: scored, Qualitative: qual}
}

func (r *Reviewer) qualitative(ctx context.Context, repoName string, analysis RepositoryAnalysis, diffs []Diff) outcome.Outcome[PRReview] {
	if r.LLM == nil {
		return outcome.Fail[PRReview](outcome.ReasonUnavailable, errors.New("no LLM provider configured"))
	}
	resp, err := r.LLM.Complete(ctx, providers.Request{
		System:    PRSystemPrompt(),
		Prompt:    BuildPRPrompt(repoName, analysis, PrepareDiffs(diffs, r.Diffs)),
		MaxTokens: maxTokensOr(r.MaxTokens),
		JSON:      true,
	})
	if err != nil {
		return outcome.Fail[PRReview](ReasonFor(err), err)
	}
	q, err := ParseQualitative(resp.Content)
	if err != nil {
		return outcome.Fail[PRReview](ReasonFor(err), err)
	}
	return outcome.Ok(q)
}
