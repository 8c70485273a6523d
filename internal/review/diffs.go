package review

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/dshills/prdoctor/internal/redact"
)

// DiffOptions controls how patches are prepared before they reach a prompt.
type DiffOptions struct {
	Redact redact.Policy
	// MaxDiffBytes caps the combined patch size. Zero means no limit.
	MaxDiffBytes int
	Logger       *slog.Logger
}

const truncatedMarker = "\n... [truncated]"

// PrepareDiffs returns a copy of diffs with redaction and the byte budget
// applied. The input slice is not modified.
func PrepareDiffs(diffs []Diff, opts DiffOptions) []Diff {
	out := make([]Diff, len(diffs))
	remaining := opts.MaxDiffBytes
	for i, d := range diffs {
		var hits []string
		d.Patch, hits = opts.Redact.Patch(d.Filename, d.Patch)
		if len(hits) > 0 {
			logger(opts.Logger).Debug("Redacted patch", "file", d.Filename, "rules", hits)
		}
		if opts.MaxDiffBytes > 0 {
			switch {
			case remaining <= 0 && d.Patch != "":
				d.Patch = fmt.Sprintf("[patch omitted: %d bytes over diff budget]", len(d.Patch))
			case len(d.Patch) > remaining:
				d.Patch = d.Patch[:runeCut(d.Patch, remaining)] + truncatedMarker
				remaining = 0
			default:
				remaining -= len(d.Patch)
			}
		}
		out[i] = d
	}
	return out
}

// runeCut returns the largest n <= limit that does not split a UTF-8 sequence.
func runeCut(s string, limit int) int {
	n := limit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
