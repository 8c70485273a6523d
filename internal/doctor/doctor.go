package doctor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/prdoctor/internal/github"
	"github.com/dshills/prdoctor/internal/gitctx"
	"github.com/dshills/prdoctor/internal/outcome"
	"github.com/dshills/prdoctor/internal/output"
	"github.com/dshills/prdoctor/internal/providers"
	"github.com/dshills/prdoctor/internal/review"
	"github.com/dshills/prdoctor/internal/scan"
	"github.com/dshills/prdoctor/internal/scoring"
)

// Hosting is the code-hosting collaborator used in live mode.
type Hosting interface {
	scan.TreeLister
	GetPullRequest(ctx context.Context, number int) (github.PullRequest, error)
	GetPullRequestDiffs(ctx context.Context, number int) ([]review.Diff, error)
	PostIssueComment(ctx context.Context, number int, body string) (string, error)
}

// Options are the inputs of one run.
type Options struct {
	Mode string
	Repo string
	// Root is the local checkout scanned when no remote listing is used.
	Root       string
	Ref        string
	RemoteScan bool

	PRNumber  int
	EventPath string
	NoComment bool

	// Fixture is a JSON fixture path for simulated mode. When FromGit is set
	// the local diff of GitRange is used instead.
	Fixture  string
	FromGit  bool
	GitRange string

	Format  string
	OutDir  string
	Scoring scoring.Config
}

// RunResult reports what a run produced and which steps degraded.
type RunResult struct {
	Mode       Mode
	Report     *review.Report
	ReportPath string
	Posted     bool
	CommentURL string
	// Degraded lists "step: reason" for every fallback that fired,
	// including a failed comment post.
	Degraded []string
}

// Runner wires the collaborators of a run. LLM and Hosting may be nil; the
// affected steps then fall back to their defaults.
type Runner struct {
	LLM       providers.Completer
	Hosting   Hosting
	Logger    *slog.Logger
	MaxTokens int
	Diffs     review.DiffOptions
}

// New creates a Runner.
func New(llm providers.Completer, hosting Hosting, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{LLM: llm, Hosting: hosting, Logger: logger}
}

// Run executes opts.Mode. An invalid mode returns ErrInvalidMode and writes
// nothing.
func (r *Runner) Run(ctx context.Context, opts Options) (RunResult, error) {
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		r.logger().Error("Invalid mode selected", "mode", opts.Mode, "error", err)
		return RunResult{}, err
	}
	if err := opts.Scoring.Validate(); err != nil {
		return RunResult{Mode: mode}, fmt.Errorf("scoring config: %w", err)
	}

	r.logger().Info("Starting run", "mode", mode, "repo", opts.Repo)
	var res RunResult
	switch mode {
	case ModeStandalone:
		res, err = r.standalone(ctx, opts)
	case ModeSimulated:
		res, err = r.simulated(ctx, opts)
	case ModeLive:
		res, err = r.live(ctx, opts)
	}
	res.Mode = mode
	return res, err
}

func (r *Runner) standalone(ctx context.Context, opts Options) (RunResult, error) {
	report := review.NewReport(review.KindRepository, opts.Repo)

	scanMode := scan.ModeLocal
	if opts.RemoteScan {
		scanMode = scan.ModeRemote
	}
	scanned, err := r.scanner(opts).Scan(ctx, opts.Repo, scanMode)
	if err != nil {
		return RunResult{}, fmt.Errorf("scanning repository: %w", err)
	}
	degradeScan(report, scanned)

	analysis, res := r.analyzer().AnalyzeOrDefault(ctx, scanned.Files, opts.Repo, nil)
	degrade(report, "repository_analysis", res.Reason())
	report.Repository = &analysis

	return r.finish(report, opts)
}

func (r *Runner) simulated(ctx context.Context, opts Options) (RunResult, error) {
	fixture, err := r.fixture(ctx, opts)
	if err != nil {
		return RunResult{}, err
	}
	r.logger().Info("Reviewing simulated PR",
		"changed_files", fixture.Stats.ChangedFiles, "additions", fixture.Stats.Additions, "deletions", fixture.Stats.Deletions)

	report := review.NewReport(review.KindPullRequest, opts.Repo)
	result := r.reviewer().Review(ctx, fixture.Stats, fixture.Diffs, opts.Repo, review.DefaultRepositoryAnalysis(), opts.Scoring)
	degrade(report, "pr_review", result.Qualitative.Reason())
	report.Review = &result.Review

	return r.finish(report, opts)
}

func (r *Runner) fixture(ctx context.Context, opts Options) (Fixture, error) {
	switch {
	case opts.FromGit:
		change, err := gitctx.Diff(ctx, opts.Root, opts.GitRange)
		if err != nil {
			return Fixture{}, fmt.Errorf("reading local diff: %w", err)
		}
		return fromChange(change), nil
	case opts.Fixture != "":
		return LoadFixture(opts.Fixture)
	default:
		return BuiltinFixture(), nil
	}
}

func (r *Runner) live(ctx context.Context, opts Options) (RunResult, error) {
	log := r.logger()
	report := review.NewReport(review.KindPullRequest, opts.Repo)

	number, meta := opts.PRNumber, github.PullRequest{}
	ev, evErr := github.LoadEvent(opts.EventPath)
	switch {
	case evErr == nil:
		meta = ev.PullRequest
		if number == 0 {
			number = ev.Number
		}
		if report.Repo == "" {
			report.Repo = ev.Repository
		}
	case number == 0:
		log.Warn("No pull request number available, scoring empty stats", "error", evErr)
		report.AddDegraded("pr_event", string(outcome.ReasonUnavailable))
	}
	report.PRNumber = number
	repo := report.Repo

	var diffs []review.Diff
	switch {
	case r.Hosting == nil:
		log.Warn("No GitHub client configured, PR data limited to the event payload")
		report.AddDegraded("pr_metadata", string(outcome.ReasonUnavailable))
	case number > 0:
		if pr, err := r.Hosting.GetPullRequest(ctx, number); err != nil {
			if github.IsNotFound(err) {
				log.Error("Pull request not found; check the PR number and that the token can read the repository", "pr", number, "repo", repo)
			} else {
				log.Error("Failed to fetch PR metadata", "pr", number, "error", err)
			}
			report.AddDegraded("pr_metadata", string(outcome.ReasonUnavailable))
		} else {
			meta = pr
		}
		if d, err := r.Hosting.GetPullRequestDiffs(ctx, number); err != nil {
			log.Error("Failed to fetch PR file diffs", "pr", number, "error", err)
			report.AddDegraded("pr_diffs", string(outcome.ReasonUnavailable))
		} else {
			diffs = d
		}
	}

	stats := scoring.Stats{ChangedFiles: meta.ChangedFiles, Additions: meta.Additions, Deletions: meta.Deletions}
	for _, d := range diffs {
		stats.Files = append(stats.Files, d.Filename)
	}

	var files []string
	if scanned, err := r.scanner(opts).Scan(ctx, repo, scan.ModeRemote); err != nil {
		log.Error("Repository scan failed, analyzing without a file list", "error", err)
		report.AddDegraded("repository_scan", string(outcome.ReasonUnavailable))
	} else {
		degradeScan(report, scanned)
		files = scanned.Files
	}

	analysis, res := r.analyzer().AnalyzeOrDefault(ctx, files, repo, &review.PRContext{Stats: stats, Diffs: diffs})
	degrade(report, "repository_analysis", res.Reason())

	result := r.reviewer().Review(ctx, stats, diffs, repo, analysis, opts.Scoring)
	degrade(report, "pr_review", result.Qualitative.Reason())
	report.Review = &result.Review

	out, err := r.finish(report, opts)
	if err != nil {
		return out, err
	}
	r.post(ctx, &out, number, opts)
	return out, nil
}

// post publishes the markdown report as a PR comment. Failures are logged
// and recorded, never returned.
func (r *Runner) post(ctx context.Context, out *RunResult, number int, opts Options) {
	log := r.logger()
	switch {
	case opts.NoComment:
		log.Info("Skipping PR comment")
		return
	case r.Hosting == nil || number == 0:
		log.Warn("Cannot post PR comment without a GitHub client and PR number", "pr", number)
		out.Degraded = append(out.Degraded, "comment: "+string(outcome.ReasonUnavailable))
		return
	}

	body, err := output.Render(out.Report, output.FormatMarkdown)
	if err == nil {
		out.CommentURL, err = r.Hosting.PostIssueComment(ctx, number, body)
	}
	if err != nil {
		log.Error("Failed to post PR comment", "pr", number, "error", err)
		out.Degraded = append(out.Degraded, "comment: "+string(outcome.ReasonUnavailable))
		return
	}
	out.Posted = true
	log.Info("Posted PR comment", "pr", number, "url", out.CommentURL)
}

func (r *Runner) finish(report *review.Report, opts Options) (RunResult, error) {
	path, err := output.WriteReport(report, opts.Format, opts.OutDir)
	if err != nil {
		return RunResult{Report: report, Degraded: report.Degraded}, fmt.Errorf("writing report: %w", err)
	}
	r.logger().Info("Report generated", "path", path)
	return RunResult{
		Report:     report,
		ReportPath: path,
		Degraded:   append([]string(nil), report.Degraded...),
	}, nil
}

func (r *Runner) scanner(opts Options) *scan.Scanner {
	var tree scan.TreeLister
	if r.Hosting != nil {
		tree = r.Hosting
	}
	s := scan.New(opts.Root, tree, r.logger())
	s.Ref = opts.Ref
	return s
}

func (r *Runner) analyzer() *review.Analyzer {
	a := review.NewAnalyzer(r.LLM, r.logger())
	a.MaxTokens = r.MaxTokens
	a.Diffs = r.Diffs
	return a
}

func (r *Runner) reviewer() *review.Reviewer {
	rv := review.NewReviewer(r.LLM, r.logger())
	rv.MaxTokens = r.MaxTokens
	rv.Diffs = r.Diffs
	return rv
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func degrade(report *review.Report, step string, reason outcome.Reason) {
	if reason != outcome.ReasonNone {
		report.AddDegraded(step, string(reason))
	}
}

func degradeScan(report *review.Report, res scan.Result) {
	if res.Source == scan.SourceLocalFallback {
		degrade(report, "repository_scan", res.Remote.Reason())
	}
}

// IsInvalidMode reports whether err came from an unrecognized mode.
func IsInvalidMode(err error) bool { return errors.Is(err, ErrInvalidMode) }
