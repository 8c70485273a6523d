package review

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestSubScore_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want SubScore
	}{
		{`7`, 7},
		{`0`, 0},
		{`10`, 10},
		{`7.6`, 8},
		{`"7"`, 7},
		{`"8/10"`, 8},
		{`"unknown"`, Unknown},
		{`"N/A"`, Unknown},
		{`null`, Unknown},
		{`11`, Unknown},
		{`-1`, Unknown},
		{`{"a":1}`, Unknown},
	}
	for _, tt := range tests {
		var s SubScore
		if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", tt.in, err)
			continue
		}
		if s != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, s, tt.want)
		}
	}
}

func TestSubScore_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(SubScores{BestPractices: 9, Security: Unknown, Performance: 0, Privacy: 4})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"bestPractices":9,"security":"unknown","performance":0,"privacy":4}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
	if Unknown.String() != "N/A" || SubScore(6).String() != "6" {
		t.Errorf("String() = %q, %q", Unknown.String(), SubScore(6).String())
	}
}

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"string", `"  hello  "`, "hello"},
		{"list", `["one", "two"]`, "- one\n- two"},
		{"object", `{"security": "none", "performance": "n+1 query"}`, "- performance: n+1 query\n- security: none"},
		{"number", `3`, "3"},
		{"null", `null`, ""},
		{"nested", `[["a", "b"]]`, "- - a\n  - b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`["Go", "PostgreSQL"]`, []string{"Go", "PostgreSQL"}},
		{`"Python, Flask , Redis"`, []string{"Python", "Flask", "Redis"}},
		{`{"language": "Go"}`, []string{"- language: Go"}},
	}
	for _, tt := range tests {
		var got StringList
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Unmarshal(%s) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Unmarshal(%s)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSubScores_Or(t *testing.T) {
	llm := SubScores{BestPractices: 8, Security: Unknown, Performance: Unknown, Privacy: 2}
	repo := SubScores{BestPractices: 5, Security: 6, Performance: Unknown, Privacy: 9}
	got := llm.Or(repo)
	want := SubScores{BestPractices: 8, Security: 6, Performance: Unknown, Privacy: 2}
	if got != want {
		t.Errorf("Or = %+v, want %+v", got, want)
	}
}

func TestDefaultRepositoryAnalysis(t *testing.T) {
	a := DefaultRepositoryAnalysis()
	if a.FileWeights == nil || len(a.FileWeights) != 0 {
		t.Errorf("FileWeights = %v, want empty non-nil map", a.FileWeights)
	}
	if a.Scores != UnknownSubScores() {
		t.Errorf("Scores = %+v, want all unknown", a.Scores)
	}
	for name, v := range map[string]string{
		"Purpose":        a.Purpose,
		"KeyComponents":  a.KeyComponents,
		"IssuesFound":    a.IssuesFound,
		"Suggestions":    a.Suggestions,
		"Strengths":      a.Strengths,
		"Weaknesses":     a.Weaknesses,
		"Applause":       a.Applause,
		"AreasToImprove": a.AreasToImprove,
	} {
		if v != NotAvailable {
			t.Errorf("%s = %q, want %q", name, v, NotAvailable)
		}
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(KindPullRequest, "acme/app")
	if r.Tool != ToolName || r.Version != SchemaVersion {
		t.Errorf("Tool/Version = %q/%q", r.Tool, r.Version)
	}
	if _, err := uuid.Parse(r.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", r.RunID, err)
	}
	if r.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
	if other := NewReport(KindPullRequest, "acme/app"); other.RunID == r.RunID {
		t.Error("RunIDs should differ between reports")
	}

	r.AddDegraded("repository_analysis", "malformed_response")
	if len(r.Degraded) != 1 || r.Degraded[0] != "repository_analysis: malformed_response" {
		t.Errorf("Degraded = %v", r.Degraded)
	}
}
