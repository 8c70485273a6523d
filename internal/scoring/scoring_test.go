package scoring

import (
	"math"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BaseScore != 100 {
		t.Errorf("BaseScore = %v, want 100", cfg.BaseScore)
	}
	if cfg.Threshold != 70 {
		t.Errorf("Threshold = %v, want 70", cfg.Threshold)
	}
	if cfg.ChangeFileWeight != 3 || cfg.AdditionWeight != 0.2 || cfg.DeletionWeight != 0.1 {
		t.Errorf("weights = %v/%v/%v, want 3/0.2/0.1", cfg.ChangeFileWeight, cfg.AdditionWeight, cfg.DeletionWeight)
	}
	if cfg.LintPenalty != 5 || cfg.TypeCheckPenalty != 3 {
		t.Errorf("lint/type penalties = %v/%v, want 5/3", cfg.LintPenalty, cfg.TypeCheckPenalty)
	}
	if cfg.Adjustments {
		t.Error("Adjustments should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestScore_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		stats       Stats
		wantScore   int
		wantFlagged bool
	}{
		{"small PR", Stats{ChangedFiles: 3, Additions: 50, Deletions: 10}, 80, false},
		{"huge PR clamps to zero", Stats{ChangedFiles: 20, Additions: 500, Deletions: 500}, 0, true},
		{"empty stats scores base", Stats{}, 100, false},
		{"exactly at threshold", Stats{ChangedFiles: 10}, 70, false},
		{"just below threshold", Stats{ChangedFiles: 10, Additions: 5}, 69, true},
		{"negative counts ignored", Stats{ChangedFiles: -4, Additions: -10}, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.stats, Default())
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d (raw %v)", got.Score, tt.wantScore, got.Raw)
			}
			if got.Flagged != tt.wantFlagged {
				t.Errorf("Flagged = %v, want %v", got.Flagged, tt.wantFlagged)
			}
		})
	}
}

func TestScore_Formula(t *testing.T) {
	cfg := Default()
	for files := 0; files <= 40; files += 7 {
		for adds := 0; adds <= 600; adds += 37 {
			for dels := 0; dels <= 600; dels += 53 {
				want := 100 - 3*float64(files) - 0.2*float64(adds) - 0.1*float64(dels)
				want = math.Round(math.Max(0, math.Min(100, want)))
				got := Score(Stats{ChangedFiles: files, Additions: adds, Deletions: dels}, cfg)
				if float64(got.Score) != want {
					t.Fatalf("Score(%d,%d,%d) = %d, want %v", files, adds, dels, got.Score, want)
				}
				if got.Flagged != (want < 70) {
					t.Fatalf("Flagged(%d,%d,%d) = %v with score %d", files, adds, dels, got.Flagged, got.Score)
				}
				if got.Score < MinScore || got.Score > MaxScore {
					t.Fatalf("Score %d out of range", got.Score)
				}
			}
		}
	}
}

func TestScore_BaseAboveHundredClamps(t *testing.T) {
	cfg := Default()
	cfg.BaseScore = 150
	got := Score(Stats{ChangedFiles: 1}, cfg)
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if got.Raw != 147 {
		t.Errorf("Raw = %v, want 147", got.Raw)
	}
}

func TestScore_AdjustmentsIgnoredByDefault(t *testing.T) {
	stats := Stats{ChangedFiles: 1, Additions: 10, Files: []string{"main.go"}, LintFailed: true, TypeCheckFailed: true}
	got := Score(stats, Default())
	if got.Score != 95 {
		t.Errorf("Score = %d, want 95", got.Score)
	}
}

func TestScore_Adjustments(t *testing.T) {
	cfg := Default()
	cfg.Adjustments = true

	tests := []struct {
		name  string
		stats Stats
		want  int
	}{
		// 100 - 3 - 2 + 5 (small) = 100
		{"small PR bonus with tests", Stats{ChangedFiles: 1, Additions: 10, Files: []string{"a.go", "a_test.go"}}, 100},
		// 100 - 3 - 2 + 5 - 10 (missing tests) = 90
		{"missing tests penalty", Stats{ChangedFiles: 1, Additions: 10, Files: []string{"a.go"}}, 90},
		// 100 - 3 - 120 ... clamps to 0 regardless
		{"large PR", Stats{ChangedFiles: 1, Additions: 600}, 0},
		// 100 - 0 - 0 - 50 (500 dels * 0.1) - 10 (large) = 40
		{"large deletion-only PR", Stats{Deletions: 500}, 40},
		// 100 - 100 (1000 dels) - 20 (massive) = -20 -> 0
		{"massive PR", Stats{Deletions: 1000}, 0},
		// 100 + 5 - 5 - 3 = 97
		{"lint and type failures", Stats{LintFailed: true, TypeCheckFailed: true}, 97},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.stats, cfg)
			if got.Score != tt.want {
				t.Errorf("Score = %d, want %d (raw %v)", got.Score, tt.want, got.Raw)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.AdditionWeight = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}

	cfg = Default()
	cfg.MassivePRLines = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for massive < large")
	}
}

func TestValidate_NonFinite(t *testing.T) {
	fields := map[string]func(*Config, float64){
		"baseScore":      func(c *Config, v float64) { c.BaseScore = v },
		"threshold":      func(c *Config, v float64) { c.Threshold = v },
		"additionWeight": func(c *Config, v float64) { c.AdditionWeight = v },
		"deletionWeight": func(c *Config, v float64) { c.DeletionWeight = v },
		"lintPenalty":    func(c *Config, v float64) { c.LintPenalty = v },
	}
	for name, set := range fields {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			cfg := Default()
			set(&cfg, v)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate with %s=%v should fail", name, v)
			}
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestScore_NaNStaysInRange(t *testing.T) {
	cfg := Default()
	cfg.AdditionWeight = math.NaN()
	got := Score(Stats{ChangedFiles: 3, Additions: 50, Deletions: 10}, cfg)
	if got.Score != MinScore {
		t.Errorf("Score = %d, want %d", got.Score, MinScore)
	}
	if !got.Flagged {
		t.Error("a zero score is below the default threshold")
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"tests/test_auth.py", true},
		{"pkg/scoring/scoring_test.go", true},
		{"web/app.spec.ts", true},
		{"web/__tests__/app.js", true},
		{"src/auth.py", false},
		{"latest.py", false},
		{"internal/testutil.go", false},
	}
	for _, tt := range tests {
		if got := IsTestFile(tt.path); got != tt.want {
			t.Errorf("IsTestFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMissingTests(t *testing.T) {
	if MissingTests(nil) {
		t.Error("no files should not count as missing tests")
	}
	if MissingTests([]string{"README.md"}) {
		t.Error("docs-only change should not count as missing tests")
	}
	if !MissingTests([]string{"src/auth.py", "README.md"}) {
		t.Error("code without tests should count as missing tests")
	}
	if MissingTests([]string{"src/auth.py", "tests/test_auth.py"}) {
		t.Error("code with tests should not count as missing tests")
	}
}
