package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/prdoctor/internal/review"
)

// Supported formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch NormalizeFormat(format) {
	case FormatMarkdown:
		return &MarkdownWriter{}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// NormalizeFormat maps aliases to a canonical format name. Empty means
// markdown.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", "md", FormatMarkdown:
		return FormatMarkdown
	default:
		return f
	}
}

// ReportFilename is the artifact name for a report kind and format.
func ReportFilename(kind review.Kind, format string) string {
	base := "repo_analysis_report"
	if kind == review.KindPullRequest {
		base = "pr_review_report"
	}
	if NormalizeFormat(format) == FormatJSON {
		return base + ".json"
	}
	return base + ".md"
}

// Render formats report into a string.
func Render(report *review.Report, format string) (string, error) {
	writer, err := GetWriter(format)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := writer.Write(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteReport writes report into dir under its well-known filename and
// returns the path written. An empty dir means the working directory.
func WriteReport(report *review.Report, format, dir string) (string, error) {
	writer, err := GetWriter(format)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, ReportFilename(report.Kind, format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, report); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing output file: %w", err)
	}
	return path, nil
}
