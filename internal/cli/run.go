package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/prdoctor/internal/config"
	"github.com/dshills/prdoctor/internal/doctor"
	"github.com/dshills/prdoctor/internal/github"
	"github.com/dshills/prdoctor/internal/providers"
	"github.com/dshills/prdoctor/internal/review"
)

// Shared run flags
var (
	flagMode          string
	flagProvider      string
	flagModel         string
	flagFormat        string
	flagOutDir        string
	flagRepo          string
	flagRef           string
	flagRoot          string
	flagRemoteScan    bool
	flagMaxDiffBytes  int
	flagNoRedact      bool
	flagFailOnFlagged bool
	flagPreview       bool

	flagPR        int
	flagNoComment bool

	flagFixture  string
	flagFromGit  bool
	flagGitRange string
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Report format (markdown, json)")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Directory the report is written to")
	cmd.Flags().StringVar(&flagRepo, "repo", "", "Repository as owner/name (default: GITHUB_REPOSITORY or the origin remote)")
	cmd.Flags().StringVar(&flagRef, "ref", "", "Git ref listed by a remote scan (default: the default branch)")
	cmd.Flags().StringVar(&flagRoot, "root", ".", "Local checkout to scan")
	cmd.Flags().BoolVar(&flagRemoteScan, "remote-scan", false, "List files through the GitHub API instead of the local checkout")
	cmd.Flags().IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum combined patch size sent to the LLM")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagFailOnFlagged, "fail-on-flagged", false, "Exit 1 when the PR score is below the threshold")
	cmd.Flags().BoolVar(&flagPreview, "preview", false, "Render the markdown report in the terminal")
}

func addPRFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagPR, "pr", 0, "Pull request number (default: from GITHUB_EVENT_PATH)")
	cmd.Flags().BoolVar(&flagNoComment, "no-comment", false, "Do not post the report as a PR comment")
}

func addFixtureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFixture, "fixture", "", "JSON file with simulated PR data")
	cmd.Flags().BoolVar(&flagFromGit, "from-git", false, "Simulate the PR from the local git diff")
	cmd.Flags().StringVar(&flagGitRange, "git-range", "", "Revision range for --from-git (default: working tree vs HEAD)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run in the configured mode (standalone, simulated or live)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, flagMode)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the repository and write repo_analysis_report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, string(doctor.ModeStandalone))
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Review a simulated pull request",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, string(doctor.ModeSimulated))
	},
}

var prCmd = &cobra.Command{
	Use:   "pr [number]",
	Short: "Review a GitHub pull request and comment on it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: invalid PR number %q\n", args[0])
				exitCode = ExitUsageError
				return nil
			}
			flagPR = n
		}
		return runMode(cmd, string(doctor.ModeLive))
	},
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOutDir != "" {
		m["outDir"] = flagOutDir
	}
	if flagRepo != "" {
		m["repo"] = flagRepo
	}
	if flagRef != "" {
		m["ref"] = flagRef
	}
	if flagFixture != "" {
		m["fixture"] = flagFixture
	}
	if flagRemoteScan {
		m["remoteScan"] = "true"
	}
	if flagMaxDiffBytes > 0 {
		m["maxDiffBytes"] = strconv.Itoa(flagMaxDiffBytes)
	}
	if flagNoRedact {
		m["redactSecrets"] = "false"
	}
	return m
}

func runMode(cmd *cobra.Command, mode string) error {
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, flagVerbose)

	overrides := buildOverrides()
	if mode != "" {
		overrides["mode"] = mode
	}
	cfg, err := config.Load(overrides, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}
	if !cfg.Privacy.RedactSecrets {
		fmt.Fprintln(stderr, "WARNING: secret redaction is disabled")
	}

	ctx := context.Background()
	runner := doctor.New(nil, nil, logger)
	runner.MaxTokens = cfg.MaxTokens
	runner.Diffs = review.DiffOptions{Redact: cfg.Privacy.Policy(), MaxDiffBytes: cfg.MaxDiffBytes, Logger: logger}

	// Collaborators are only built for a valid mode; Run reports the error
	// otherwise.
	if parsed, err := doctor.ParseMode(cfg.Mode); err == nil {
		runner.LLM, err = buildLLM(cfg, logger)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		if cfg.Repo == "" && parsed != doctor.ModeSimulated {
			cfg.Repo = detectRepo(flagRoot, logger)
		}
		if parsed == doctor.ModeLive || cfg.RemoteScan {
			runner.Hosting = buildHosting(ctx, cfg.Repo, logger)
		}
	}

	res, err := runner.Run(ctx, doctor.Options{
		Mode:       cfg.Mode,
		Repo:       cfg.Repo,
		Root:       flagRoot,
		Ref:        cfg.Ref,
		RemoteScan: cfg.RemoteScan,
		PRNumber:   flagPR,
		EventPath:  cfg.EventPath,
		NoComment:  flagNoComment,
		Fixture:    cfg.Fixture,
		FromGit:    flagFromGit,
		GitRange:   flagGitRange,
		Format:     cfg.Format,
		OutDir:     cfg.OutDir,
		Scoring:    cfg.Scoring,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if doctor.IsInvalidMode(err) {
			exitCode = ExitUsageError
		} else {
			exitCode = ExitRuntimeError
		}
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report written to %s\n", res.ReportPath)
	if res.Report.Review != nil {
		fmt.Fprintf(out, "PR score: %d/100", res.Report.Review.Score)
		if res.Report.Review.Flagged {
			fmt.Fprintf(out, " (flagged, threshold %g)", cfg.Scoring.Threshold)
		}
		fmt.Fprintln(out)
	}
	if res.Posted {
		fmt.Fprintf(out, "Comment posted: %s\n", res.CommentURL)
	}
	if len(res.Degraded) > 0 {
		fmt.Fprintf(stderr, "Degraded steps: %s\n", strings.Join(res.Degraded, ", "))
	}

	if flagPreview {
		if err := preview(out, res.Report); err != nil {
			logger.Warn("Preview failed", "error", err)
		}
	}

	if flagFailOnFlagged && res.Report.Review != nil && res.Report.Review.Flagged {
		exitCode = ExitFlagged
	}
	return nil
}

// buildLLM constructs the configured provider. A missing credential yields a
// stand-in that fails every call, so each step falls back to its default.
func buildLLM(cfg config.Config, logger *slog.Logger) (providers.Completer, error) {
	llm, err := providers.New(cfg.Provider, cfg.Model)
	switch {
	case err == nil:
		logger.Debug("LLM provider ready", "provider", llm.Name(), "model", cfg.Model)
		return llm, nil
	case errors.Is(err, providers.ErrMissingCredential):
		logger.Warn("LLM credential missing, analyses will use defaults", "provider", cfg.Provider, "error", err)
		return providers.Unavailable{Provider: cfg.Provider, Err: err}, nil
	default:
		return nil, err
	}
}

// buildHosting returns nil when no client can be made; live mode then
// degrades to event-payload data and a local scan.
func buildHosting(ctx context.Context, repo string, logger *slog.Logger) doctor.Hosting {
	if repo == "" {
		logger.Warn("No repository configured; set GITHUB_REPOSITORY or --repo")
		return nil
	}
	client, err := github.NewClient(ctx, repo, logger)
	if err != nil {
		logger.Warn("GitHub client unavailable", "error", err)
		return nil
	}
	return client
}

func detectRepo(root string, logger *slog.Logger) string {
	repo, err := github.DetectRepo(root)
	if err != nil {
		logger.Debug("Could not detect repository from git remote", "error", err)
		return ""
	}
	logger.Debug("Detected repository from git remote", "repo", repo)
	return repo
}

func init() {
	runCmd.Flags().StringVar(&flagMode, "mode", "", "Mode: standalone, simulated (development) or live (github)")
	for _, cmd := range []*cobra.Command{runCmd, analyzeCmd, simulateCmd, prCmd} {
		addRunFlags(cmd)
	}
	addPRFlags(runCmd)
	addPRFlags(prCmd)
	addFixtureFlags(runCmd)
	addFixtureFlags(simulateCmd)
}
