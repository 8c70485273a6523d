package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dshills/prdoctor/internal/review"
	"github.com/dshills/prdoctor/internal/scoring"
)

// Change is a diff split per file with its aggregate statistics.
type Change struct {
	Range string
	Stats scoring.Stats
	Diffs []review.Diff
}

// Diff collects the changes of revRange in the repository at dir. An empty
// revRange means the working tree against HEAD.
func Diff(ctx context.Context, dir, revRange string) (Change, error) {
	if revRange == "" {
		revRange = "HEAD"
	}
	out, err := gitOutput(ctx, dir, "diff", "--no-color", "--no-ext-diff", "-M", revRange)
	if err != nil {
		return Change{}, fmt.Errorf("git diff %s: %w", revRange, err)
	}
	diffs := ParseDiff(out)
	return Change{Range: revRange, Stats: Summarize(diffs), Diffs: diffs}, nil
}

// RepoRoot returns the top-level directory of the repository containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(root), nil
}

// ParseDiff splits a unified git diff into one record per file. Patches
// start at the first hunk header, matching what the GitHub API returns.
func ParseDiff(diff string) []review.Diff {
	var out []review.Diff
	for _, section := range splitDiffSections(diff) {
		d, ok := parseSection(section)
		if ok {
			out = append(out, d)
		}
	}
	return out
}

// Summarize aggregates per-file diffs into scoring stats.
func Summarize(diffs []review.Diff) scoring.Stats {
	stats := scoring.Stats{ChangedFiles: len(diffs)}
	for _, d := range diffs {
		stats.Additions += d.Additions
		stats.Deletions += d.Deletions
		stats.Files = append(stats.Files, d.Filename)
	}
	return stats
}

func splitDiffSections(diff string) []string {
	var sections []string
	lines := strings.Split(diff, "\n")
	var current strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if strings.TrimSpace(current.String()) != "" {
		sections = append(sections, current.String())
	}
	return sections
}

func parseSection(section string) (review.Diff, bool) {
	lines := strings.Split(strings.TrimRight(section, "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "diff --git") {
		return review.Diff{}, false
	}

	d := review.Diff{Status: "modified", Filename: headerPath(lines[0])}
	hunk := -1
	for i, line := range lines[1:] {
		switch {
		case strings.HasPrefix(line, "@@"):
			hunk = i + 1
		case strings.HasPrefix(line, "new file mode"):
			d.Status = "added"
		case strings.HasPrefix(line, "deleted file mode"):
			d.Status = "removed"
		case strings.HasPrefix(line, "rename to "):
			d.Status = "renamed"
			d.Filename = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "+++ b/"):
			d.Filename = strings.TrimPrefix(line, "+++ b/")
		}
		if hunk >= 0 {
			break
		}
	}
	if hunk < 0 {
		return d, d.Filename != ""
	}

	patch := lines[hunk:]
	for _, line := range patch {
		switch {
		case strings.HasPrefix(line, "+"):
			d.Additions++
		case strings.HasPrefix(line, "-"):
			d.Deletions++
		}
	}
	d.Patch = strings.Join(patch, "\n")
	return d, d.Filename != ""
}

// headerPath reads the post-image path from "diff --git a/x b/x".
func headerPath(header string) string {
	if i := strings.LastIndex(header, " b/"); i >= 0 {
		return header[i+len(" b/"):]
	}
	return ""
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
