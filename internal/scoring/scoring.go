package scoring

import (
	"fmt"
	"math"
	"path"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Config holds the scoring weights and thresholds.
type Config struct {
	BaseScore        float64 `yaml:"baseScore" json:"baseScore"`
	Threshold        float64 `yaml:"threshold" json:"threshold"`
	ChangeFileWeight float64 `yaml:"changeFileWeight" json:"changeFileWeight"`
	AdditionWeight   float64 `yaml:"additionWeight" json:"additionWeight"`
	DeletionWeight   float64 `yaml:"deletionWeight" json:"deletionWeight"`

	SmallPRBonus        float64 `yaml:"smallPRBonus" json:"smallPRBonus"`
	LargePRPenalty      float64 `yaml:"largePRPenalty" json:"largePRPenalty"`
	MassivePRPenalty    float64 `yaml:"massivePRPenalty" json:"massivePRPenalty"`
	MissingTestsPenalty float64 `yaml:"missingTestsPenalty" json:"missingTestsPenalty"`
	LintPenalty         float64 `yaml:"lintPenalty" json:"lintPenalty"`
	TypeCheckPenalty    float64 `yaml:"typeCheckPenalty" json:"typeCheckPenalty"`

	// Line counts (additions + deletions) that bound the size tiers.
	SmallPRLines   int `yaml:"smallPRLines" json:"smallPRLines"`
	LargePRLines   int `yaml:"largePRLines" json:"largePRLines"`
	MassivePRLines int `yaml:"massivePRLines" json:"massivePRLines"`

	// Adjustments enables the size tiers and the test/lint/type penalties.
	Adjustments bool `yaml:"adjustments" json:"adjustments"`
}

// Default returns the documented scoring defaults.
func Default() Config {
	return Config{
		BaseScore:           100,
		Threshold:           70,
		ChangeFileWeight:    3,
		AdditionWeight:      0.2,
		DeletionWeight:      0.1,
		SmallPRBonus:        5,
		LargePRPenalty:      10,
		MassivePRPenalty:    20,
		MissingTestsPenalty: 10,
		LintPenalty:         5,
		TypeCheckPenalty:    3,
		SmallPRLines:        50,
		LargePRLines:        500,
		MassivePRLines:      1000,
	}
}

// Validate rejects non-finite values and weights that would make the score
// increase with PR size.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"baseScore", c.BaseScore},
		{"threshold", c.Threshold},
		{"changeFileWeight", c.ChangeFileWeight},
		{"additionWeight", c.AdditionWeight},
		{"deletionWeight", c.DeletionWeight},
		{"smallPRBonus", c.SmallPRBonus},
		{"largePRPenalty", c.LargePRPenalty},
		{"massivePRPenalty", c.MassivePRPenalty},
		{"missingTestsPenalty", c.MissingTestsPenalty},
		{"lintPenalty", c.LintPenalty},
		{"typeCheckPenalty", c.TypeCheckPenalty},
	} {
		if !IsFinite(f.v) {
			return fmt.Errorf("%s must be a finite number, got %v", f.name, f.v)
		}
	}
	if c.ChangeFileWeight < 0 || c.AdditionWeight < 0 || c.DeletionWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative (files=%v additions=%v deletions=%v)",
			c.ChangeFileWeight, c.AdditionWeight, c.DeletionWeight)
	}
	if c.LargePRLines > 0 && c.MassivePRLines > 0 && c.MassivePRLines < c.LargePRLines {
		return fmt.Errorf("massivePRLines (%d) must not be below largePRLines (%d)", c.MassivePRLines, c.LargePRLines)
	}
	return nil
}

// Stats are the pull request size statistics the score is computed from.
type Stats struct {
	ChangedFiles int `json:"changedFiles"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`

	// Optional signals, only consulted when Config.Adjustments is set.
	Files           []string `json:"files,omitempty"`
	LintFailed      bool     `json:"lintFailed,omitempty"`
	TypeCheckFailed bool     `json:"typeCheckFailed,omitempty"`
}

// Lines returns the total number of changed lines.
func (s Stats) Lines() int {
	return s.Additions + s.Deletions
}

// Result is the outcome of scoring a pull request.
type Result struct {
	Score   int     `json:"score"`
	Flagged bool    `json:"flagged"`
	Raw     float64 `json:"raw"`
}

// Score computes the deterministic score for stats. Negative counts are
// treated as zero.
func Score(stats Stats, cfg Config) Result {
	files := float64(max(stats.ChangedFiles, 0))
	adds := float64(max(stats.Additions, 0))
	dels := float64(max(stats.Deletions, 0))

	raw := cfg.BaseScore
	raw -= files * cfg.ChangeFileWeight
	raw -= adds * cfg.AdditionWeight
	raw -= dels * cfg.DeletionWeight

	if cfg.Adjustments {
		raw += adjustment(stats, cfg)
	}

	score := int(math.Round(clamp(raw, MinScore, MaxScore)))
	return Result{
		Score:   score,
		Flagged: float64(score) < cfg.Threshold,
		Raw:     raw,
	}
}

func adjustment(stats Stats, cfg Config) float64 {
	var delta float64
	lines := stats.Lines()
	switch {
	case cfg.MassivePRLines > 0 && lines >= cfg.MassivePRLines:
		delta -= cfg.MassivePRPenalty
	case cfg.LargePRLines > 0 && lines >= cfg.LargePRLines:
		delta -= cfg.LargePRPenalty
	case lines < cfg.SmallPRLines:
		delta += cfg.SmallPRBonus
	}
	if MissingTests(stats.Files) {
		delta -= cfg.MissingTestsPenalty
	}
	if stats.LintFailed {
		delta -= cfg.LintPenalty
	}
	if stats.TypeCheckFailed {
		delta -= cfg.TypeCheckPenalty
	}
	return delta
}

// MissingTests reports whether files touches code without touching any test.
func MissingTests(files []string) bool {
	var code, tests int
	for _, f := range files {
		switch {
		case IsTestFile(f):
			tests++
		case isCodeFile(f):
			code++
		}
	}
	return code > 0 && tests == 0
}

// IsTestFile uses naming conventions only; file contents are never read.
func IsTestFile(p string) bool {
	p = strings.ToLower(p)
	base := path.Base(p)
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.go") ||
		strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if seg == "test" || seg == "tests" || seg == "__tests__" {
			return true
		}
	}
	return false
}

var codeExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".rs": true, ".java": true, ".rb": true, ".c": true, ".cpp": true, ".h": true,
	".cs": true, ".php": true, ".swift": true, ".kt": true, ".scala": true,
}

func isCodeFile(p string) bool {
	return codeExts[strings.ToLower(path.Ext(p))]
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
