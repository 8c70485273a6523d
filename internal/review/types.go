package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/prdoctor/internal/scoring"
)

// NotAvailable fills every free-text field of a defaulted record.
const NotAvailable = "Not available."

// SubScore is a 0..10 rating, or Unknown.
type SubScore int

// Unknown marks a sub-score the LLM did not provide.
const Unknown SubScore = -1

// Valid reports whether s is a real 0..10 rating.
func (s SubScore) Valid() bool { return s >= 0 && s <= 10 }

func (s SubScore) String() string {
	if !s.Valid() {
		return "N/A"
	}
	return strconv.Itoa(int(s))
}

// MarshalJSON writes Unknown as the string "unknown".
func (s SubScore) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else, or a
// value outside 0..10, decodes to Unknown.
func (s *SubScore) UnmarshalJSON(data []byte) error {
	*s = Unknown
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		str = strings.TrimSuffix(strings.TrimSpace(str), "/10")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || f < 0 || f > 10 {
		return nil
	}
	*s = SubScore(math.Round(f))
	return nil
}

// Text is free text that tolerates list- and object-shaped JSON.
// Lists become "- item" lines; objects become "- key: value" lines in key
// order.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Text(flatten(v))
	return nil
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []any:
		lines := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				lines = append(lines, "- "+strings.ReplaceAll(s, "\n", "\n  "))
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := flatten(x[k]); s != "" {
				lines = append(lines, fmt.Sprintf("- %s: %s", k, strings.ReplaceAll(s, "\n", "\n  ")))
			}
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(x)
	}
}

// StringList decodes from a JSON array or a single comma-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []any
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s := flatten(it); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*l = nil
		if s := flatten(v); s != "" {
			*l = StringList{s}
		}
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// SubScores are the four 0..10 ratings carried by both analyses.
type SubScores struct {
	BestPractices SubScore `json:"bestPractices"`
	Security      SubScore `json:"security"`
	Performance   SubScore `json:"performance"`
	Privacy       SubScore `json:"privacy"`
}

// UnknownSubScores has every rating set to Unknown.
func UnknownSubScores() SubScores {
	return SubScores{Unknown, Unknown, Unknown, Unknown}
}

// Or returns s with every invalid rating replaced by the one in fallback.
func (s SubScores) Or(fallback SubScores) SubScores {
	pick := func(a, b SubScore) SubScore {
		if a.Valid() {
			return a
		}
		return b
	}
	return SubScores{
		BestPractices: pick(s.BestPractices, fallback.BestPractices),
		Security:      pick(s.Security, fallback.Security),
		Performance:   pick(s.Performance, fallback.Performance),
		Privacy:       pick(s.Privacy, fallback.Privacy),
	}
}

// RepositoryAnalysis is the LLM's view of a repository.
type RepositoryAnalysis struct {
	Purpose        string         `json:"purpose"`
	TechStack      []string       `json:"techStack"`
	FileWeights    map[string]int `json:"fileWeights"`
	Scores         SubScores      `json:"scores"`
	KeyComponents  string         `json:"keyComponents"`
	IssuesFound    string         `json:"issuesFound"`
	Suggestions    string         `json:"suggestions"`
	Strengths      string         `json:"strengths"`
	Weaknesses     string         `json:"weaknesses"`
	Applause       string         `json:"applause"`
	AreasToImprove string         `json:"areasToImprove"`
}

// DefaultRepositoryAnalysis is substituted when analysis fails.
func DefaultRepositoryAnalysis() RepositoryAnalysis {
	return RepositoryAnalysis{
		Purpose:        NotAvailable,
		TechStack:      []string{},
		FileWeights:    map[string]int{},
		Scores:         UnknownSubScores(),
		KeyComponents:  NotAvailable,
		IssuesFound:    NotAvailable,
		Suggestions:    NotAvailable,
		Strengths:      NotAvailable,
		Weaknesses:     NotAvailable,
		Applause:       NotAvailable,
		AreasToImprove: NotAvailable,
	}
}

// PRReview is the combined deterministic and qualitative review of a PR.
// Score and Flagged always come from scoring.Score.
type PRReview struct {
	Score           int       `json:"score"`
	Flagged         bool      `json:"flagged"`
	Scores          SubScores `json:"scores"`
	Summary         string    `json:"summary"`
	Impact          string    `json:"impact"`
	IssuesFound     string    `json:"issuesFound"`
	TestSuggestions string    `json:"testSuggestions"`
	Strengths       string    `json:"strengths"`
	Weaknesses      string    `json:"weaknesses"`
	Suggestions     string    `json:"suggestions"`
	Applause        string    `json:"applause"`
	AreasToImprove  string    `json:"areasToImprove"`
}

// DefaultQualitative is the qualitative half of a PRReview used when the
// LLM call fails.
func DefaultQualitative() PRReview {
	return PRReview{
		Scores:          UnknownSubScores(),
		Summary:         NotAvailable,
		Impact:          NotAvailable,
		IssuesFound:     NotAvailable,
		TestSuggestions: NotAvailable,
		Strengths:       NotAvailable,
		Weaknesses:      NotAvailable,
		Suggestions:     NotAvailable,
		Applause:        NotAvailable,
		AreasToImprove:  NotAvailable,
	}
}

// Diff is the change content for one file of a PR.
type Diff struct {
	Filename  string `json:"filename"`
	Status    string `json:"status,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// PRContext is PR data handed to the repository analyzer.
type PRContext struct {
	Stats scoring.Stats
	Diffs []Diff
}

// Kind distinguishes report types.
type Kind string

const (
	KindRepository  Kind = "repository"
	KindPullRequest Kind = "pull_request"
)

const (
	ToolName      = "prdoctor"
	SchemaVersion = "1.0"
)

// Report is the top-level output structure.
type Report struct {
	Tool        string              `json:"tool"`
	Version     string              `json:"version"`
	RunID       string              `json:"runId"`
	Kind        Kind                `json:"kind"`
	Repo        string              `json:"repo,omitempty"`
	PRNumber    int                 `json:"prNumber,omitempty"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Repository  *RepositoryAnalysis `json:"repository,omitempty"`
	Review      *PRReview           `json:"review,omitempty"`
	// Degraded lists the steps that fell back to defaults, as
	// "step: reason" strings.
	Degraded []string `json:"degraded,omitempty"`
}

// NewReport starts a report with a fresh run ID.
func NewReport(kind Kind, repo string) *Report {
	return &Report{
		Tool:        ToolName,
		Version:     SchemaVersion,
		RunID:       uuid.NewString(),
		Kind:        kind,
		Repo:        repo,
		GeneratedAt: time.Now().UTC(),
	}
}

// AddDegraded records a fallback that fired.
func (r *Report) AddDegraded(step, reason string) {
	r.Degraded = append(r.Degraded, step+": "+reason)
}
