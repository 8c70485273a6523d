package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when LLM output is not the expected JSON object.
var ErrMalformedResponse = errors.New("malformed LLM response")

type rawRepositoryAnalysis struct {
	Purpose            Text                       `json:"purpose"`
	TechStack          StringList                 `json:"tech_stack"`
	FileWeights        map[string]json.RawMessage `json:"file_weights"`
	BestPracticesScore SubScore                   `json:"best_practices_score"`
	SecurityScore      SubScore                   `json:"security_score"`
	PerformanceScore   SubScore                   `json:"performance_score"`
	PrivacyScore       SubScore                   `json:"privacy_score"`
	KeyComponents      Text                       `json:"key_components"`
	IssuesFound        Text                       `json:"issues_found"`
	Suggestions        Text                       `json:"suggestions"`
	Strengths          Text                       `json:"strengths"`
	Weaknesses         Text                       `json:"weaknesses"`
	Applause           Text                       `json:"applause"`
	AreasToImprove     Text                       `json:"areas_to_improve"`
}

type rawPRReview struct {
	Summary            Text     `json:"pr_summary"`
	Impact             Text     `json:"impact"`
	IssuesFound        Text     `json:"issues_found"`
	TestSuggestions    Text     `json:"test_suggestions"`
	Strengths          Text     `json:"strengths"`
	Weaknesses         Text     `json:"weaknesses"`
	Suggestions        Text     `json:"suggestions"`
	Applause           Text     `json:"applause"`
	AreasToImprove     Text     `json:"areas_to_improve"`
	BestPracticesScore SubScore `json:"best_practices_score"`
	SecurityScore      SubScore `json:"security_score"`
	PerformanceScore   SubScore `json:"performance_score"`
	PrivacyScore       SubScore `json:"privacy_score"`
}

// ParseRepositoryAnalysis validates LLM output against the repository
// analysis schema. Weights outside 1..10 or not integral are dropped and
// missing text fields read NotAvailable.
func ParseRepositoryAnalysis(content string) (RepositoryAnalysis, error) {
	obj, err := extractObject(content)
	if err != nil {
		return RepositoryAnalysis{}, err
	}

	raw := rawRepositoryAnalysis{
		BestPracticesScore: Unknown,
		SecurityScore:      Unknown,
		PerformanceScore:   Unknown,
		PrivacyScore:       Unknown,
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return RepositoryAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	a := RepositoryAnalysis{
		Purpose:     text(raw.Purpose),
		TechStack:   nonNil([]string(raw.TechStack)),
		FileWeights: make(map[string]int, len(raw.FileWeights)),
		Scores: SubScores{
			BestPractices: raw.BestPracticesScore,
			Security:      raw.SecurityScore,
			Performance:   raw.PerformanceScore,
			Privacy:       raw.PrivacyScore,
		},
		KeyComponents:  text(raw.KeyComponents),
		IssuesFound:    text(raw.IssuesFound),
		Suggestions:    text(raw.Suggestions),
		Strengths:      text(raw.Strengths),
		Weaknesses:     text(raw.Weaknesses),
		Applause:       text(raw.Applause),
		AreasToImprove: text(raw.AreasToImprove),
	}
	for path, v := range raw.FileWeights {
		if w, ok := parseWeight(v); ok && strings.TrimSpace(path) != "" {
			a.FileWeights[path] = w
		}
	}
	return a, nil
}

// ParseQualitative validates LLM output against the PR review schema. The
// returned PRReview has zero Score and Flagged.
func ParseQualitative(content string) (PRReview, error) {
	obj, err := extractObject(content)
	if err != nil {
		return PRReview{}, err
	}

	raw := rawPRReview{
		BestPracticesScore: Unknown,
		SecurityScore:      Unknown,
		PerformanceScore:   Unknown,
		PrivacyScore:       Unknown,
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return PRReview{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return PRReview{
		Scores: SubScores{
			BestPractices: raw.BestPracticesScore,
			Security:      raw.SecurityScore,
			Performance:   raw.PerformanceScore,
			Privacy:       raw.PrivacyScore,
		},
		Summary:         text(raw.Summary),
		Impact:          text(raw.Impact),
		IssuesFound:     text(raw.IssuesFound),
		TestSuggestions: text(raw.TestSuggestions),
		Strengths:       text(raw.Strengths),
		Weaknesses:      text(raw.Weaknesses),
		Suggestions:     text(raw.Suggestions),
		Applause:        text(raw.Applause),
		AreasToImprove:  text(raw.AreasToImprove),
	}, nil
}

// extractObject strips markdown fences and any prose around the outermost
// JSON object.
func extractObject(content string) (string, error) {
	content = strings.TrimSpace(content)

	// Strip markdown code fences if present
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		end := len(lines)
		if end > 1 && strings.TrimSpace(lines[end-1]) == "```" {
			end--
		}
		content = strings.Join(lines[1:end], "\n")
	}

	start := strings.Index(content, "{")
	stop := strings.LastIndex(content, "}")
	if start < 0 || stop < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	obj := content[start : stop+1]
	if !json.Valid([]byte(obj)) {
		return "", fmt.Errorf("%w: invalid JSON object", ErrMalformedResponse)
	}
	return obj, nil
}

func parseWeight(v json.RawMessage) (int, bool) {
	var s SubScore
	if err := s.UnmarshalJSON(v); err != nil || !s.Valid() {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil && f != float64(int(f)) {
		return 0, false
	}
	if s < 1 {
		return 0, false
	}
	return int(s), true
}

func text(t Text) string {
	if strings.TrimSpace(string(t)) == "" {
		return NotAvailable
	}
	return string(t)
}
