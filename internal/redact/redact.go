package redact

import (
	"path"
	"regexp"
	"strings"
)

// Placeholder replaces every detected secret.
const Placeholder = "[REDACTED]"

// PathRule is the hit name reported when a whole patch is dropped by path.
const PathRule = "path"

const pathNotice = Placeholder + " (file content redacted by path policy)\n"

// DefaultPaths are files whose patches are never sent to an LLM.
var DefaultPaths = []string{
	"**/.env",
	"**/.env.*",
	"**/*.pem",
	"**/*.key",
	"**/id_rsa*",
	"**/*secrets*",
}

type rule struct {
	name string
	re   *regexp.Regexp
}

// rules run in order; provider-specific keys come before the generic
// assignment shapes so the reported name is the most precise one.
var rules = []rule{
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"aws-access-key-id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-access-key", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer-token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"database-url", regexp.MustCompile(`(?i)\b(postgres(ql)?|mysql|mongodb(\+srv)?|redis|amqp)://[^\s:@/]+:[^\s@/]+@`)},
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
	{"quoted-secret", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
}

// Policy selects which redactions apply to a patch.
type Policy struct {
	Secrets bool
	// Paths are glob patterns; a matching file's whole patch is replaced.
	Paths []string
}

// Enabled reports whether the policy can change anything.
func (p Policy) Enabled() bool {
	return p.Secrets || len(p.Paths) > 0
}

// Covers reports whether file matches one of the policy's path patterns.
// A leading "**/" matches at any depth, so "**/.env" covers both ".env"
// and "deploy/.env".
func (p Policy) Covers(file string) bool {
	file = strings.TrimPrefix(strings.ReplaceAll(file, "\\", "/"), "./")
	base := path.Base(file)
	for _, pattern := range p.Paths {
		if ok, _ := path.Match(pattern, file); ok {
			return true
		}
		if rest, found := strings.CutPrefix(pattern, "**/"); found {
			if ok, _ := path.Match(rest, base); ok {
				return true
			}
		}
	}
	return false
}

// Patch applies the policy to one file's patch. It returns the new patch and
// the names of the rules that fired; no hits means the patch is unchanged.
func (p Policy) Patch(file, patch string) (string, []string) {
	if patch == "" {
		return patch, nil
	}
	if p.Covers(file) {
		return pathNotice, []string{PathRule}
	}
	if !p.Secrets {
		return patch, nil
	}
	return Secrets(patch)
}

// Secrets replaces every detected secret in text with Placeholder and
// returns the names of the rules that matched.
func Secrets(text string) (string, []string) {
	var hits []string
	for _, r := range rules {
		if !r.re.MatchString(text) {
			continue
		}
		text = r.re.ReplaceAllLiteralString(text, Placeholder)
		hits = append(hits, r.name)
	}
	return text, hits
}
