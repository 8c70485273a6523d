package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/prdoctor/internal/review"
)

// MarkdownWriter outputs the scoreboard report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	switch report.Kind {
	case review.KindPullRequest:
		if report.Review == nil {
			return errors.New("pull request report has no review")
		}
		writePRReview(w, report)
	default:
		if report.Repository == nil {
			return errors.New("repository report has no analysis")
		}
		writeRepository(w, report)
	}
	writeFooter(w, report)
	return nil
}

func writePRReview(w io.Writer, report *review.Report) {
	r := report.Review

	fmt.Fprintf(w, "# 🏆 Scoreboard\n\n")
	fmt.Fprintf(w, "- **Total PR Score:** %d/100\n", r.Score)
	writeSubScores(w, r.Scores)
	if r.Flagged {
		fmt.Fprintf(w, "\n> ⚠️ **Flagged:** this PR scored below the review threshold.\n")
	}

	fmt.Fprintf(w, "\n## 🚀 PR Summary\n\n")
	fmt.Fprintf(w, "### What PR Tries to Achieve\n%s\n", orNA(r.Summary))
	writeSection(w, "💡 Impact on the Project", r.Impact)
	writeSection(w, "🔍 Issues Found", r.IssuesFound)
	writeSection(w, "🧪 Suggested Tests", r.TestSuggestions)
	writeSection(w, "📝 General Suggestions", r.Suggestions)
	writeSection(w, "🔹 Strengths", r.Strengths)
	writeSection(w, "🔻 Weaknesses", r.Weaknesses)
	writeSection(w, "👏 Applause", r.Applause)
	writeSection(w, "📈 Areas to Improve", r.AreasToImprove)
}

func writeRepository(w io.Writer, report *review.Report) {
	a := report.Repository

	fmt.Fprintf(w, "# 🏆 Scoreboard\n\n")
	writeSubScores(w, a.Scores)

	fmt.Fprintf(w, "\n## 🚀 Repository Overview\n\n")
	fmt.Fprintf(w, "### Repository Purpose\n%s\n", orNA(a.Purpose))
	if len(a.TechStack) > 0 {
		fmt.Fprintf(w, "\n### Tech Stack\n%s\n", strings.Join(a.TechStack, ", "))
	}
	writeSection(w, "💡 Key Components", a.KeyComponents)
	writeSection(w, "🔍 Issues Found", a.IssuesFound)
	writeSection(w, "📝 General Suggestions", a.Suggestions)
	writeSection(w, "🔹 Strengths", a.Strengths)
	writeSection(w, "🔻 Weaknesses", a.Weaknesses)
	writeSection(w, "👏 Applause", a.Applause)
	writeSection(w, "📈 Areas to Improve", a.AreasToImprove)
	writeFileWeights(w, a.FileWeights)
}

func writeSubScores(w io.Writer, s review.SubScores) {
	fmt.Fprintf(w, "- **Best Practices Score:** %s/10\n", s.BestPractices)
	fmt.Fprintf(w, "- **Security Score:** %s/10\n", s.Security)
	fmt.Fprintf(w, "- **Performance Score:** %s/10\n", s.Performance)
	fmt.Fprintf(w, "- **Privacy Score:** %s/10\n", s.Privacy)
}

func writeSection(w io.Writer, title, body string) {
	fmt.Fprintf(w, "\n## %s\n%s\n", title, orNA(body))
}

// writeFileWeights lists weights heaviest first, then by path.
func writeFileWeights(w io.Writer, weights map[string]int) {
	fmt.Fprintf(w, "\n## 📂 File Weights & Importance\n")
	if len(weights) == 0 {
		fmt.Fprintf(w, "%s\n", review.NotAvailable)
		return
	}
	paths := make([]string, 0, len(weights))
	for p := range weights {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if weights[paths[i]] != weights[paths[j]] {
			return weights[paths[i]] > weights[paths[j]]
		}
		return paths[i] < paths[j]
	})
	for _, p := range paths {
		fmt.Fprintf(w, "- `%s`: Weight %d\n", p, weights[p])
	}
}

func writeFooter(w io.Writer, report *review.Report) {
	if len(report.Degraded) > 0 {
		fmt.Fprintf(w, "\n<details>\n<summary>Degraded steps (%d)</summary>\n\n", len(report.Degraded))
		for _, d := range report.Degraded {
			fmt.Fprintf(w, "- %s\n", d)
		}
		fmt.Fprintf(w, "\n</details>\n")
	}
	fmt.Fprintf(w, "\n*Generated by %s (run %s)*\n", report.Tool, report.RunID)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return review.NotAvailable
	}
	return s
}
