package scan

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is the root-level file patterns are read from.
const IgnoreFile = ".gitignore"

// DefaultIgnorePatterns are always applied.
var DefaultIgnorePatterns = []string{".git", "__pycache__"}

// IgnoreRules is a set of plain string patterns.
//
// A file is ignored when a pattern is a prefix or a suffix of its relative
// path; a directory is pruned when its relative path contains a pattern.
// This is looser than gitignore globbing: "test" suffix-matches
// "latest" and ".git" also prunes ".github". Glob characters are not
// interpreted.
type IgnoreRules struct {
	patterns []string
}

// NewIgnoreRules builds rules from patterns plus the defaults.
func NewIgnoreRules(patterns ...string) *IgnoreRules {
	r := &IgnoreRules{}
	seen := make(map[string]bool)
	for _, p := range append(append([]string{}, patterns...), DefaultIgnorePatterns...) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		r.patterns = append(r.patterns, p)
	}
	return r
}

// LoadIgnoreRules reads root/.gitignore if present. A missing file yields
// the defaults only.
func LoadIgnoreRules(root string) (*IgnoreRules, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return NewIgnoreRules(), nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return NewIgnoreRules(patterns...), nil
}

// Patterns returns a copy of the active patterns.
func (r *IgnoreRules) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// Match reports whether a file path is ignored.
func (r *IgnoreRules) Match(path string) bool {
	for _, p := range r.patterns {
		if strings.HasPrefix(path, p) || strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// PruneDir reports whether a directory should not be descended into.
func (r *IgnoreRules) PruneDir(path string) bool {
	for _, p := range r.patterns {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
