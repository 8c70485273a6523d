package review

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const repositorySystemPrompt = "You are an expert software engineer analyzing a repository."

const prSystemPrompt = "You are an expert software engineer reviewing a pull request."

const repositoryInstructions = `Your goal is to determine the purpose, technology stack, and file importance of this repository based on its structure.

Analysis requirements:
1. Repository purpose
   - Summarize the primary functionality in 3-5 sentences.
   - Say whether it is a web application, API, CLI tool, library, data processing system, etc.
2. Technology stack
   - Detect the programming languages, frameworks, and libraries used.
   - Use dependency manifests (go.mod, requirements.txt, pyproject.toml, package.json) when present.
   - Include database technologies (SQL, NoSQL) if any.
3. File importance weights
   - Assign an integer weight from 1 to 10 to each file:
     - 10 (critical): security-sensitive files (authentication, database access, API keys).
     - 8-9 (high): core business logic (service handlers, data processing, transactions).
     - 6-7 (medium): supporting modules (helpers, middleware, logging).
     - 3-5 (low): non-critical functionality (templates, scripts, configuration).
     - 1-2 (very low): documentation, tests, CI/CD workflows.
   - Weight files that handle user input higher.
   - Error handling and monitoring files get medium priority.
   - Unit tests get minimal weight unless they hold business-critical validation.
4. Ratings
   - Rate best practices, security, performance, and privacy from 0 to 10.`

const repositorySchema = `{
  "repo_name": "%s",
  "purpose": "<repository purpose in 3-5 sentences>",
  "tech_stack": ["<detected technologies>"],
  "file_weights": {
    "path/to/file_1.py": 9,
    "tests/test_auth.py": 2
  },
  "best_practices_score": 0,
  "security_score": 0,
  "performance_score": 0,
  "privacy_score": 0,
  "key_components": "<main components and how they fit together>",
  "issues_found": "<issues found: best practices, security, performance>",
  "suggestions": "<general suggestions>",
  "strengths": "<strengths>",
  "weaknesses": "<weaknesses>",
  "applause": "<what the authors did well>",
  "areas_to_improve": "<skills or areas to improve>"
}`

const prSchema = `{
  "pr_summary": "<what the PR tries to achieve in 3-5 sentences>",
  "impact": "<impact on the repository>",
  "issues_found": "<number and brief details of issues: best practices, security, performance>",
  "test_suggestions": "<suggested test cases for the PR>",
  "strengths": "<strengths of the PR>",
  "weaknesses": "<weaknesses of the PR>",
  "suggestions": "<general suggestions>",
  "applause": "<applaud the contributor for the positive aspects of their skills>",
  "areas_to_improve": "<skills to improve or explore>",
  "best_practices_score": 0,
  "security_score": 0,
  "performance_score": 0,
  "privacy_score": 0
}`

const jsonOnly = "Return only the JSON object. Do not use markdown formatting."

// RepositorySystemPrompt returns the system prompt for repository analysis.
func RepositorySystemPrompt() string { return repositorySystemPrompt }

// PRSystemPrompt returns the system prompt for PR review.
func PRSystemPrompt() string { return prSystemPrompt }

// BuildRepositoryPrompt constructs the repository analysis prompt. When pr
// is non-nil the PR stats and diffs are embedded with an instruction to
// relate the change to the repository.
func BuildRepositoryPrompt(files []string, repoName string, pr *PRContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are analyzing the GitHub repository %q.\n", repoName)
	b.WriteString(repositoryInstructions)
	b.WriteString("\n\n--- BEGIN REPOSITORY STRUCTURE ---\n")
	b.WriteString(mustIndent(nonNil(files)))
	b.WriteString("\n--- END REPOSITORY STRUCTURE ---\n")

	if pr != nil {
		b.WriteString("\nA pull request is under review. Compare its changes against the repository ")
		b.WriteString("and let them inform the ratings and issues you report.\n")
		fmt.Fprintf(&b, "Changed files: %d, additions: %d, deletions: %d\n",
			pr.Stats.ChangedFiles, pr.Stats.Additions, pr.Stats.Deletions)
		b.WriteString("\n--- BEGIN PR DIFFS ---\n")
		b.WriteString(mustIndent(nonNil(pr.Diffs)))
		b.WriteString("\n--- END PR DIFFS ---\n")
	}

	b.WriteString("\nRespond with a JSON object of this form:\n")
	fmt.Fprintf(&b, repositorySchema, repoName)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly)
	b.WriteString("\n")
	return b.String()
}

// BuildPRPrompt constructs the qualitative PR review prompt.
func BuildPRPrompt(repoName string, analysis RepositoryAnalysis, diffs []Diff) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are reviewing a pull request for the repository %q.\n", repoName)
	b.WriteString("The repository is described as follows:\n")
	fmt.Fprintf(&b, "Purpose: %s\n", orDefault(analysis.Purpose, "Unknown"))
	fmt.Fprintf(&b, "Tech Stack: %s\n", orDefault(strings.Join(analysis.TechStack, ", "), "Unknown"))
	b.WriteString("File Weights:\n")
	b.WriteString(formatWeights(analysis.FileWeights))

	if scores := formatScores(analysis.Scores); scores != "" {
		b.WriteString("Repository ratings (0-10), repeat them unless the PR changes your assessment:\n")
		b.WriteString(scores)
	}

	b.WriteString("\nHere are the exact changes made in this PR:\n")
	b.WriteString("--- BEGIN PR DIFFS ---\n")
	b.WriteString(mustIndent(nonNil(diffs)))
	b.WriteString("\n--- END PR DIFFS ---\n")

	b.WriteString("\nRespond with a JSON object of this form:\n")
	b.WriteString(prSchema)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly)
	b.WriteString("\n")
	return b.String()
}

func formatWeights(weights map[string]int) string {
	if len(weights) == 0 {
		return "  (none)\n"
	}
	paths := make([]string, 0, len(weights))
	for p := range weights {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "  %s: %d\n", p, weights[p])
	}
	return b.String()
}

func formatScores(s SubScores) string {
	var b strings.Builder
	for _, item := range []struct {
		name  string
		score SubScore
	}{
		{"best_practices_score", s.BestPractices},
		{"security_score", s.Security},
		{"performance_score", s.Performance},
		{"privacy_score", s.Privacy},
	} {
		if item.score.Valid() {
			fmt.Fprintf(&b, "  %s: %d\n", item.name, item.score)
		}
	}
	return b.String()
}

func mustIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" || s == NotAvailable {
		return def
	}
	return s
}
